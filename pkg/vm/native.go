package vm

import (
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/cricklet/govm/pkg/classfile"
)

// invokeNative dispatches a method marked Native to the finite hardcoded
// table below, keyed by (className, signatureKey). Anything not named here
// is an effective no-op returning Void, matching a minimal interpreter that
// expects the bulk of the platform to run as ordinary interpreted bootstrap
// bytecode rather than being reimplemented natively in Go.
func (interp *Interpreter) invokeNative(cls *Class, method *classfile.Method, args []Value) (Value, error) {
	signatureKey := method.SignatureKey(cls.Def.ConstantPool)
	key := cls.Name + "." + signatureKey

	switch key {
	case "java/lang/Class.desiredAssertionStatus0(Ljava/lang/Class;)Z":
		return VBool(false), nil

	case "java/lang/Object.hashCode()I":
		return VI32(identityHash(args[0])), nil

	case "java/lang/Object.getClass()Ljava/lang/Class;":
		obj, ok := args[0].Ref().(*Object)
		if !ok {
			return Value{}, newInternalError(Unreachable, nil)
		}
		runtimeClass := interp.CM.GetClassByID(obj.ClassID)
		return VRef(&ClassRef{Class: runtimeClass}), nil

	case "jdk/internal/util/SystemProps$Raw.platformProperties()[Ljava/lang/String;":
		return VRef(&StringArray{Elements: platformProperties()}), nil

	case "jdk/internal/util/SystemProps$Raw.vmProperties()[Ljava/lang/String;":
		return VRef(&StringArray{Elements: []string{}}), nil

	case "jdk/internal/util/SystemProps$Raw.cmdProperties()Ljava/util/HashMap;":
		hashMapClass, err := interp.CM.GetClassByName("java/util/HashMap")
		if err != nil {
			return Value{}, err
		}
		obj := &Object{ClassID: hashMapClass.ID, Data: make([]Value, hashMapClass.NumObjectSlots)}
		if ctor, ok := hashMapClass.Def.FindMethod("<init>()V"); ok {
			if _, err := interp.invokeMethod(hashMapClass, ctor, []Value{VRef(obj)}); err != nil {
				return Value{}, err
			}
		}
		return VRef(obj), nil

	case "java/lang/System.arraycopy(Ljava/lang/Object;ILjava/lang/Object;II)V":
		return Value{}, interp.nativeArraycopy(args)
	}

	return VVoid(), nil
}

func identityHash(v Value) int32 {
	obj, ok := v.Ref().(*Object)
	if !ok {
		return 0
	}
	return int32(reflect.ValueOf(obj).Pointer() & 0x7fffffff)
}

// platformProperties returns the bit-exact 40-slot property vector the
// bootstrap System class expects at startup. Slots with no corresponding
// environment source are left empty rather than invented.
func platformProperties() []string {
	home, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()
	user := os.Getenv("USER")

	ftpHost, ftpPort := splitProxyEnv(os.Getenv("ftp_proxy"))
	httpHost, httpPort := splitProxyEnv(os.Getenv("http_proxy"))
	httpsHost, httpsPort := splitProxyEnv(os.Getenv("https_proxy"))

	return []string{
		"",           // display_country
		"",           // display_language
		"",           // display_script
		"",           // display_variant
		"UTF-8",      // file.encoding
		"/",          // file.separator
		"",           // format_country
		"",           // format_language
		"",           // format_script
		"",           // format_variant
		"",           // ftp.nonProxyHosts
		ftpHost,      // ftp.proxyHost
		ftpPort,      // ftp.proxyPort
		"",           // http.nonProxyHosts
		httpHost,     // http.proxyHost
		httpPort,     // http.proxyPort
		httpsHost,    // https.proxyHost
		httpsPort,    // https.proxyPort
		os.TempDir(), // java.io.tmpdir
		"\n",         // line.separator
		"Linux",      // os.name
		"",           // os.version
		"",           // os.arch
		":",          // path.separator
		"",           // socks.nonProxyHosts
		"",           // socksProxyHost
		"",           // socksProxyPort
		"UTF-8",      // stdout.encoding
		"UTF-8",      // stderr.encoding
		"",           // sun.arch.abi
		"64",         // sun.arch.data.model
		"little",     // sun.cpu.endian
		"",           // sun.cpu.isalist
		"UTF-16",     // sun.io.unicode.encoding
		"UTF-8",      // sun.jnu.encoding
		"",           // sun.os.patch.level
		cwd,          // user.dir
		home,         // user.home
		user,         // user.name
		"",           // FIXED_LENGTH sentinel
	}
}

// splitProxyEnv splits a "http://host:port"-shaped proxy environment value
// into its host and port parts; either half is empty if the variable is
// unset or lacks that part.
func splitProxyEnv(raw string) (host, port string) {
	if raw == "" {
		return "", ""
	}
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		return u.Hostname(), u.Port()
	}
	host = raw
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		host, port = raw[:i], raw[i+1:]
	}
	return host, port
}

// nativeArraycopy copies length elements element by element, honoring
// overlap the way System.arraycopy's contract requires. The two arrays'
// kinds are not compared.
func (interp *Interpreter) nativeArraycopy(args []Value) error {
	src, srcPos, dst, dstPos, length := args[0], args[1], args[2], args[3], args[4]
	if src.IsNull() || dst.IsNull() {
		return newExecutionError(NullPointer, nil)
	}
	n := int(length.I32())
	sp, dp := int(srcPos.I32()), int(dstPos.I32())
	backward := src.Ref() == dst.Ref() && sp < dp
	for k := 0; k < n; k++ {
		i := k
		if backward {
			// Back-to-front, so overlapping source elements are read before they are overwritten.
			i = n - 1 - k
		}
		v, err := ArrayLoad(src.Ref(), sp+i)
		if err != nil {
			return err
		}
		if err := ArrayStore(dst.Ref(), dp+i, v); err != nil {
			return err
		}
	}
	return nil
}
