package vm

import (
	"fmt"

	"github.com/cricklet/govm/pkg/classfile"
)

// ResolvedMethod is a method together with the runtime class that declares
// it, as produced by one of the dispatch kinds below.
type ResolvedMethod struct {
	Class  *Class
	Method *classfile.Method
}

// ResolveStatic resolves an invokestatic call: the method must be declared
// (not merely inherited) by className, or by a superclass walked upward.
func ResolveStatic(cm *ClassManager, className, signatureKey string) (*ResolvedMethod, error) {
	return resolveUpSuperclassChain(cm, className, signatureKey)
}

// ResolveSpecial resolves an invokespecial call: constructors, private
// methods, and super.method() calls, all bound to the literal referenced
// class rather than the receiver's runtime class.
func ResolveSpecial(cm *ClassManager, className, signatureKey string) (*ResolvedMethod, error) {
	return resolveUpSuperclassChain(cm, className, signatureKey)
}

// ResolveVirtual resolves an invokevirtual call by walking the receiver's
// own Parents list (root-first) and returning the last, i.e. most-derived,
// declaration of signatureKey.
func ResolveVirtual(cm *ClassManager, receiverClassID ClassID, signatureKey string) (*ResolvedMethod, error) {
	receiver := cm.GetClassByID(receiverClassID)
	if receiver == nil {
		return nil, newResolutionError(ClassNotFound, "<unknown class id>", nil)
	}
	var found *ResolvedMethod
	for _, id := range receiver.Parents {
		cls := cm.GetClassByID(id)
		if cls == nil {
			continue
		}
		if m, ok := cls.Def.FindMethod(signatureKey); ok {
			found = &ResolvedMethod{Class: cls, Method: m}
		}
	}
	if found == nil {
		return nil, newResolutionError(NoSuchMethod, receiver.Name+"."+signatureKey, nil)
	}
	if found.Method.Is(classfile.AccAbstract) {
		return nil, newResolutionError(AbstractMethodError, receiver.Name+"."+signatureKey, nil)
	}
	return found, nil
}

// ResolveInterface resolves an invokeinterface call: like ResolveVirtual,
// but the search also walks the interfaces implemented at each level
// (default methods), since an interface method need not be overridden by a
// concrete class to be callable.
func ResolveInterface(cm *ClassManager, receiverClassID ClassID, signatureKey string) (*ResolvedMethod, error) {
	if m, err := ResolveVirtual(cm, receiverClassID, signatureKey); err == nil {
		return m, nil
	}
	receiver := cm.GetClassByID(receiverClassID)
	if receiver == nil {
		return nil, newResolutionError(ClassNotFound, "<unknown class id>", nil)
	}
	for _, parentID := range receiver.Parents {
		parent := cm.GetClassByID(parentID)
		for _, ifaceID := range parent.Interfaces {
			if rm, ok := resolveInterfaceDefault(cm, ifaceID, signatureKey, map[ClassID]bool{}); ok {
				return rm, nil
			}
		}
	}
	return nil, newResolutionError(NoSuchMethod, receiver.Name+"."+signatureKey, nil)
}

func resolveInterfaceDefault(cm *ClassManager, ifaceID ClassID, signatureKey string, visited map[ClassID]bool) (*ResolvedMethod, bool) {
	if visited[ifaceID] {
		return nil, false
	}
	visited[ifaceID] = true
	iface := cm.GetClassByID(ifaceID)
	if iface == nil {
		return nil, false
	}
	if m, ok := iface.Def.FindMethod(signatureKey); ok && !m.Is(classfile.AccAbstract) {
		return &ResolvedMethod{Class: iface, Method: m}, true
	}
	for _, superIfaceID := range iface.Interfaces {
		if rm, ok := resolveInterfaceDefault(cm, superIfaceID, signatureKey, visited); ok {
			return rm, true
		}
	}
	return nil, false
}

// resolveUpSuperclassChain finds the nearest declaration of signatureKey
// starting at className and walking Superclass links upward, used by both
// static and special dispatch which bind to the literal referenced class.
func resolveUpSuperclassChain(cm *ClassManager, className, signatureKey string) (*ResolvedMethod, error) {
	cls, err := cm.GetClassByName(className)
	if err != nil {
		return nil, err
	}
	current := cls
	for {
		if m, ok := current.Def.FindMethod(signatureKey); ok {
			return &ResolvedMethod{Class: current, Method: m}, nil
		}
		if !current.HasSuper {
			break
		}
		current = cm.GetClassByID(current.Superclass)
		if current == nil {
			break
		}
	}
	return nil, newResolutionError(NoSuchMethod, className+"."+signatureKey, nil)
}

// ArgCount returns the number of argument slots a descriptor's parameter
// list occupies on the operand stack before the call (category-2 types
// count as a single argument here; the interpreter accounts for their
// double-slot storage separately when popping).
func ArgCount(descriptor string) (int, error) {
	i := 0
	if i >= len(descriptor) || descriptor[i] != '(' {
		return 0, fmt.Errorf("descriptor %q missing leading (", descriptor)
	}
	i++
	count := 0
	for i < len(descriptor) && descriptor[i] != ')' {
		switch descriptor[i] {
		case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
			count++
			i++
		case 'L':
			for i < len(descriptor) && descriptor[i] != ';' {
				i++
			}
			i++ // consume ';'
			count++
		case '[':
			for i < len(descriptor) && descriptor[i] == '[' {
				i++
			}
			// array element: primitive tag or L...;
			if i < len(descriptor) && descriptor[i] == 'L' {
				for i < len(descriptor) && descriptor[i] != ';' {
					i++
				}
				i++
			} else if i < len(descriptor) {
				i++
			}
			count++
		default:
			return 0, fmt.Errorf("descriptor %q: unrecognized type char %q", descriptor, descriptor[i])
		}
	}
	return count, nil
}
