package vm

import (
	"fmt"
	"sync"

	"github.com/cricklet/govm/pkg/classfile"
)

// ClassManager is the process-wide registry of loaded classes: it assigns
// ClassIDs, parses and registers ClassDefs, computes field layout, maintains
// static storage, and triggers static initializers.
//
// ClassesLock guards the maps below even though the execution model (§5) is
// single-threaded; a hosting embedder may load classes from a goroutine
// other than the one executing bytecode.
type ClassManager struct {
	ClassesLock sync.RWMutex

	Loader ClassLoader

	nameToID map[string]ClassID
	byID     map[ClassID]*Class
	defs     map[ClassID]*classfile.ClassDef
	statics  map[ClassID][]Value
	classObj map[ClassID]*Object
	nextID   ClassID

	interp *Interpreter
}

// NewClassManager creates a manager backed by the given loader. interp is
// used to invoke <clinit> during registration; it may be set after
// construction via SetInterpreter if the two are wired up together.
func NewClassManager(loader ClassLoader) *ClassManager {
	return &ClassManager{
		Loader:   loader,
		nameToID: make(map[string]ClassID),
		byID:     make(map[ClassID]*Class),
		defs:     make(map[ClassID]*classfile.ClassDef),
		statics:  make(map[ClassID][]Value),
		classObj: make(map[ClassID]*Object),
	}
}

// SetInterpreter wires the interpreter used to run <clinit>. Needed because
// the interpreter itself holds a reference back to the class manager.
func (cm *ClassManager) SetInterpreter(interp *Interpreter) { cm.interp = interp }

// SetClasspath replaces the manager's loader with a bootstrap-first loader
// over the given classpath, using the bootstrap jmod found via
// FindJmodPath.
func (cm *ClassManager) SetClasspath(classpath string) {
	cp := NewClasspathLoader(classpath)
	if jmodPath, err := FindJmodPath(); err == nil {
		cm.Loader = NewBootstrapFirstLoader(NewJmodClassLoader(jmodPath), cp)
	} else {
		cm.Loader = cp
	}
}

func (cm *ClassManager) allocateID(name string) (ClassID, bool) {
	cm.ClassesLock.Lock()
	defer cm.ClassesLock.Unlock()
	if id, ok := cm.nameToID[name]; ok {
		return id, true
	}
	id := cm.nextID
	cm.nextID++
	cm.nameToID[name] = id
	return id, false
}

func (cm *ClassManager) classByIDLocked(id ClassID) *Class {
	cm.ClassesLock.RLock()
	defer cm.ClassesLock.RUnlock()
	return cm.byID[id]
}

// GetClassByName returns the registered Class, loading it first if needed.
func (cm *ClassManager) GetClassByName(name string) (*Class, error) {
	if err := cm.LoadClassByName(name); err != nil {
		return nil, err
	}
	cm.ClassesLock.RLock()
	defer cm.ClassesLock.RUnlock()
	id := cm.nameToID[name]
	return cm.byID[id], nil
}

// GetClassByID returns the registered Class for id, or nil if unregistered.
func (cm *ClassManager) GetClassByID(id ClassID) *Class {
	return cm.classByIDLocked(id)
}

// GetClassDef returns the parsed ClassDef for id.
func (cm *ClassManager) GetClassDef(id ClassID) *classfile.ClassDef {
	cm.ClassesLock.RLock()
	defer cm.ClassesLock.RUnlock()
	return cm.defs[id]
}

// GetStatic reads static storage slot `slot` of class id.
func (cm *ClassManager) GetStatic(id ClassID, slot int) Value {
	cm.ClassesLock.RLock()
	defer cm.ClassesLock.RUnlock()
	return cm.statics[id][slot]
}

// SetStatic writes static storage slot `slot` of class id.
func (cm *ClassManager) SetStatic(id ClassID, slot int, v Value) {
	cm.ClassesLock.Lock()
	defer cm.ClassesLock.Unlock()
	cm.statics[id][slot] = v
}

// GetClassObject returns the singleton reflective Class instance for id.
// Absent only for java/lang/Class itself.
func (cm *ClassManager) GetClassObject(id ClassID) *Object {
	cm.ClassesLock.RLock()
	defer cm.ClassesLock.RUnlock()
	return cm.classObj[id]
}

// LoadClassByName registers name (and its full dependency closure) if not
// already registered. It is idempotent.
func (cm *ClassManager) LoadClassByName(name string) error {
	id, existed := cm.allocateID(name)
	if existed {
		cm.ClassesLock.RLock()
		_, registered := cm.byID[id]
		cm.ClassesLock.RUnlock()
		if registered {
			return nil
		}
	}

	// Drain the dependency queue: parse this class and every not-yet-seen
	// superclass/interface it names, in discovery order, so ancestors
	// register (and run <clinit>) before their descendants.
	queue := []string{name}
	seen := map[string]bool{name: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		currentID := cm.nameToID[current]

		cm.ClassesLock.RLock()
		_, already := cm.defs[currentID]
		cm.ClassesLock.RUnlock()
		if already {
			continue
		}

		data, err := cm.Loader.LoadClass(current)
		if err != nil {
			return newResolutionError(ClassNotFound, current, err)
		}
		def, err := classfile.Parse(bytesReader(data))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", current, err)
		}

		cm.ClassesLock.Lock()
		cm.defs[currentID] = def
		cm.ClassesLock.Unlock()

		if superName := def.SuperName(); superName != "" && !seen[superName] {
			seen[superName] = true
			cm.allocateID(superName)
			queue = append(queue, superName)
		}
		for _, ifaceName := range def.InterfaceNames() {
			if !seen[ifaceName] {
				seen[ifaceName] = true
				cm.allocateID(ifaceName)
				queue = append(queue, ifaceName)
			}
		}
	}

	return cm.registerClosure(name, seen)
}

// registerClosure performs layout/static-init/class-object construction and
// <clinit> invocation for every class discovered while loading name, each
// ancestor before its descendants.
func (cm *ClassManager) registerClosure(name string, seen map[string]bool) error {
	// Registration must happen root-first: repeatedly pick any
	// not-yet-registered class whose superclass (if any) is already
	// registered.
	pending := make(map[string]bool, len(seen))
	for n := range seen {
		pending[n] = true
	}

	for len(pending) > 0 {
		progressed := false
		for n := range pending {
			id := cm.nameToID[n]
			def := cm.defs[id]
			superName := def.SuperName()
			if superName != "" && pending[superName] {
				continue // wait for the superclass to register first
			}
			ready := true
			for _, ifaceName := range def.InterfaceNames() {
				if pending[ifaceName] {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			if err := cm.registerOne(n, id, def); err != nil {
				return err
			}
			delete(pending, n)
			progressed = true
		}
		if !progressed && len(pending) > 0 {
			return newInternalError(Unreachable, fmt.Errorf("dependency cycle registering classes: %v", pending))
		}
	}
	return nil
}

func (cm *ClassManager) registerOne(name string, id ClassID, def *classfile.ClassDef) error {
	cm.ClassesLock.RLock()
	_, already := cm.byID[id]
	cm.ClassesLock.RUnlock()
	if already {
		return nil
	}

	cls := &Class{ID: id, Name: name, Def: def}

	if superName := def.SuperName(); superName != "" {
		superID := cm.nameToID[superName]
		cls.Superclass = superID
		cls.HasSuper = true
		superClass := cm.classByIDLocked(superID)
		cls.Parents = append(append([]ClassID{}, superClass.Parents...), id)
	} else {
		cls.Parents = []ClassID{id}
	}

	for _, ifaceName := range def.InterfaceNames() {
		cls.Interfaces = append(cls.Interfaces, cm.nameToID[ifaceName])
	}

	cm.computeFieldLayout(cls, def)

	statics := make([]Value, cls.NumStaticSlots)
	for declaringName, fields := range cls.StaticFieldMapping {
		_ = declaringName
		for _, slot := range fields {
			statics[slot.Index] = DefaultForDescriptor(slot.Descriptor)
		}
	}

	cm.ClassesLock.Lock()
	cm.byID[id] = cls
	cm.statics[id] = statics
	cm.ClassesLock.Unlock()

	if name != "java/lang/Class" {
		classClassID, err := cm.ensureClassClassID()
		if err != nil {
			return err
		}
		classObj := &Object{ClassID: classClassID, Data: make([]Value, cm.GetClassByIDMust(classClassID).NumObjectSlots)}
		cm.ClassesLock.Lock()
		cm.classObj[id] = classObj
		cm.ClassesLock.Unlock()
		if nameSlot, err := cm.GetClassByIDMust(classClassID).ObjectFieldSlot("java/lang/Class", "name"); err == nil {
			classObj.Data[nameSlot] = VUtf8(name)
		}
	}

	if _, ok := def.FindMethod("<clinit>()V"); ok && cm.interp != nil {
		if err := cm.interp.InvokeClinit(cls); err != nil {
			return err
		}
		cls.Initialized = true
	}

	return nil
}

// GetClassByIDMust performs the same lookup as GetClassByID (nil for an
// unregistered id); used internally once a class is known to be registered.
func (cm *ClassManager) GetClassByIDMust(id ClassID) *Class {
	return cm.classByIDLocked(id)
}

func (cm *ClassManager) ensureClassClassID() (ClassID, error) {
	if err := cm.LoadClassByName("java/lang/Class"); err != nil {
		return 0, err
	}
	cm.ClassesLock.RLock()
	defer cm.ClassesLock.RUnlock()
	return cm.nameToID["java/lang/Class"], nil
}

// computeFieldLayout walks cls.Parents root-first, assigning contiguous
// slot indices per declared field, split into object vs static storage.
func (cm *ClassManager) computeFieldLayout(cls *Class, def *classfile.ClassDef) {
	cls.ObjectFieldMapping = make(map[string]map[string]FieldSlot)
	cls.StaticFieldMapping = make(map[string]map[string]FieldSlot)

	objectSlot := 0
	staticSlot := 0

	for _, ancestorID := range cls.Parents {
		var ancestorDef *classfile.ClassDef
		var ancestorName string
		if ancestorID == cls.ID {
			ancestorDef = def
			ancestorName = cls.Name
		} else {
			ancestor := cm.classByIDLocked(ancestorID)
			ancestorDef = ancestor.Def
			ancestorName = ancestor.Name
			// inherit the ancestor's own layout entries so lookups by an
			// ancestor's declaring-type name still work on the subclass
			for declType, fields := range ancestor.ObjectFieldMapping {
				cls.ObjectFieldMapping[declType] = fields
			}
			for declType, fields := range ancestor.StaticFieldMapping {
				cls.StaticFieldMapping[declType] = fields
			}
			objectSlot = ancestor.NumObjectSlots
			staticSlot = ancestor.NumStaticSlots
			continue
		}

		objFields := make(map[string]FieldSlot)
		staticFields := make(map[string]FieldSlot)
		for fieldName, f := range ancestorDef.Fields {
			desc := f.Descriptor(ancestorDef.ConstantPool)
			if f.Is(classfile.AccStatic) {
				staticFields[fieldName] = FieldSlot{Descriptor: desc, Index: staticSlot}
				staticSlot++
			} else {
				objFields[fieldName] = FieldSlot{Descriptor: desc, Index: objectSlot}
				objectSlot++
			}
		}
		cls.ObjectFieldMapping[ancestorName] = objFields
		cls.StaticFieldMapping[ancestorName] = staticFields
	}

	cls.NumObjectSlots = objectSlot
	cls.NumStaticSlots = staticSlot
}

// bytesReader adapts a []byte to io.Reader without pulling in bytes.Reader
// at every call site.
func bytesReader(b []byte) *byteSliceReader { return &byteSliceReader{data: b} }

type byteSliceReader struct {
	data []byte
	pos  int
}

func (r *byteSliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("EOF")
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
