package vm

import (
	"fmt"

	"github.com/cricklet/govm/pkg/classfile"
)

// ClassID is the dense, monotonically assigned runtime identity of a loaded
// class.
type ClassID int

// FieldSlot locates one declared field within a class's flattened field
// layout.
type FieldSlot struct {
	Descriptor string
	Index      int
}

// Class is the runtime form of a loaded class, derived from its ClassDef at
// registration time by the class manager.
type Class struct {
	ID         ClassID
	Name       string
	Def        *classfile.ClassDef
	Superclass ClassID // meaningful only when HasSuper; zero for java/lang/Object
	HasSuper   bool
	Parents    []ClassID // root-first, including this class's own id last
	Interfaces []ClassID

	// ObjectFieldMapping/StaticFieldMapping are keyed by declaring-class
	// name, then by field name, so shadowed fields across the hierarchy
	// stay addressable by the declared type at the call site.
	ObjectFieldMapping map[string]map[string]FieldSlot
	StaticFieldMapping map[string]map[string]FieldSlot

	NumObjectSlots int
	NumStaticSlots int

	Initialized bool
}

// ObjectFieldSlot resolves the instance-slot index for (declaredType, name).
func (c *Class) ObjectFieldSlot(declaredType, name string) (int, error) {
	byName, ok := c.ObjectFieldMapping[declaredType]
	if !ok {
		return 0, newResolutionError(NoSuchField, declaredType+"."+name, fmt.Errorf("no fields declared by %s", declaredType))
	}
	slot, ok := byName[name]
	if !ok {
		return 0, newResolutionError(NoSuchField, declaredType+"."+name, nil)
	}
	return slot.Index, nil
}

// StaticFieldSlot resolves the static-slot index for (declaredType, name).
func (c *Class) StaticFieldSlot(declaredType, name string) (int, error) {
	byName, ok := c.StaticFieldMapping[declaredType]
	if !ok {
		return 0, newResolutionError(NoSuchField, declaredType+"."+name, fmt.Errorf("no static fields declared by %s", declaredType))
	}
	slot, ok := byName[name]
	if !ok {
		return 0, newResolutionError(NoSuchField, declaredType+"."+name, nil)
	}
	return slot.Index, nil
}

// IsSubclassOf reports whether c is, or inherits from, the class named
// ancestorName (walking Parents, which is root-first inclusive of c).
func (c *Class) IsSubclassOf(ancestorName string, byID func(ClassID) *Class) bool {
	for _, id := range c.Parents {
		if byID(id).Name == ancestorName {
			return true
		}
	}
	return false
}

// ImplementsInterface reports whether c or any ancestor declares
// ifaceName among its direct interfaces.
func (c *Class) ImplementsInterface(ifaceName string, byID func(ClassID) *Class) bool {
	for _, id := range c.Parents {
		cls := byID(id)
		for _, ifaceID := range cls.Interfaces {
			if byID(ifaceID).Name == ifaceName {
				return true
			}
		}
	}
	return false
}
