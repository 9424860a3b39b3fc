package vm

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ClassLoader maps a JVM-style class name (e.g. "java/lang/String") to its
// class-file bytes. The class manager consumes exactly this interface,
// independent of how an implementation actually fetches the bytes.
type ClassLoader interface {
	LoadClass(name string) ([]byte, error)
}

// bootstrapPrefixes names the package prefixes routed to the bootstrap jmod
// loader before the classpath loader is ever consulted.
var bootstrapPrefixes = []string{"java/", "javax/", "sun/", "com/sun/", "jdk/"}

func isBootstrapClass(name string) bool {
	for _, p := range bootstrapPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// JmodClassLoader loads classes from a JDK jmod file, which is a zip
// archive prefixed by a 4-byte "JM\x01\x00" header.
type JmodClassLoader struct {
	JmodPath string

	zipData   []byte
	zipReader *zip.Reader
}

// NewJmodClassLoader creates a loader for the given jmod path.
func NewJmodClassLoader(jmodPath string) *JmodClassLoader {
	return &JmodClassLoader{JmodPath: jmodPath}
}

// FindJmodPath locates java.base.jmod via JAVA_BASE_JMOD (an explicit
// override) or JAVA_HOME/jmods/java.base.jmod.
func FindJmodPath() (string, error) {
	if p := os.Getenv("JAVA_BASE_JMOD"); p != "" {
		return p, nil
	}
	home := os.Getenv("JAVA_HOME")
	if home == "" {
		return "", fmt.Errorf("JAVA_HOME not set and JAVA_BASE_JMOD not set")
	}
	return filepath.Join(home, "jmods", "java.base.jmod"), nil
}

func (cl *JmodClassLoader) ensureZipReader() error {
	if cl.zipReader != nil {
		return nil
	}

	f, err := os.Open(cl.JmodPath)
	if err != nil {
		return fmt.Errorf("jmod: opening %s: %w", cl.JmodPath, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("jmod: stat %s: %w", cl.JmodPath, err)
	}

	data := make([]byte, stat.Size())
	if _, err := io.ReadFull(f, data); err != nil {
		return fmt.Errorf("jmod: reading %s: %w", cl.JmodPath, err)
	}

	if len(data) < 4 {
		return fmt.Errorf("jmod: %s too short to contain a header", cl.JmodPath)
	}
	cl.zipData = data[4:] // skip "JM\x01\x00" header
	cl.zipReader, err = zip.NewReader(bytes.NewReader(cl.zipData), int64(len(cl.zipData)))
	if err != nil {
		return fmt.Errorf("jmod: opening zip: %w", err)
	}
	return nil
}

// LoadClass reads <name>.class from classes/<name>.class within the jmod.
func (cl *JmodClassLoader) LoadClass(name string) ([]byte, error) {
	if err := cl.ensureZipReader(); err != nil {
		return nil, err
	}

	target := "classes/" + name + ".class"
	for _, file := range cl.zipReader.File {
		if file.Name == target {
			rc, err := file.Open()
			if err != nil {
				return nil, fmt.Errorf("jmod: opening %s: %w", target, err)
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil, fmt.Errorf("jmod: reading %s: %w", target, err)
			}
			return data, nil
		}
	}

	return nil, fmt.Errorf("jmod: class %s not found in %s", name, cl.JmodPath)
}

// ClasspathLoader searches an ordered list of directories (or jar-less
// classpath entries) for <name>.class, trying each in order.
type ClasspathLoader struct {
	Entries []string
}

// NewClasspathLoader splits a classpath string on the platform list
// separator (":" on POSIX, ";" on Windows).
func NewClasspathLoader(classpath string) *ClasspathLoader {
	var entries []string
	if classpath != "" {
		entries = strings.Split(classpath, string(filepath.ListSeparator))
	}
	return &ClasspathLoader{Entries: entries}
}

func (cl *ClasspathLoader) LoadClass(name string) ([]byte, error) {
	for _, dir := range cl.Entries {
		path := filepath.Join(dir, name+".class")
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("classpath: class %s not found in %v", name, cl.Entries)
}

// BootstrapFirstLoader composes a bootstrap (jmod) loader and a classpath
// loader: names under a recognized java-platform package prefix are tried
// against the bootstrap loader before the classpath loader is ever
// consulted; everything else goes straight to the classpath loader.
type BootstrapFirstLoader struct {
	Bootstrap ClassLoader
	Classpath ClassLoader
}

func NewBootstrapFirstLoader(bootstrap, classpath ClassLoader) *BootstrapFirstLoader {
	return &BootstrapFirstLoader{Bootstrap: bootstrap, Classpath: classpath}
}

func (cl *BootstrapFirstLoader) LoadClass(name string) ([]byte, error) {
	if isBootstrapClass(name) && cl.Bootstrap != nil {
		return cl.Bootstrap.LoadClass(name)
	}
	return cl.Classpath.LoadClass(name)
}
