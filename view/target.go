package view

import (
	"fmt"
	"strings"
)

// Target describes what a response should decode into: a *Shape for a
// single view, or a Collection for many.
type Target interface {
	isTarget()
}

// ContainerKind selects how collection elements are accumulated.
type ContainerKind uint8

const (
	// KindList keeps elements in split order.
	KindList ContainerKind = iota
	// KindSet drops elements whose document equals an earlier one.
	KindSet
	// KindQueue keeps split order and hands elements out first in, first out.
	KindQueue
)

var containerKindNames = [...]string{
	KindList:  "list",
	KindSet:   "set",
	KindQueue: "queue",
}

func (k ContainerKind) String() string {
	if int(k) < len(containerKindNames) {
		return containerKindNames[k]
	}
	return fmt.Sprintf("ContainerKind(%d)", k)
}

// ParseContainerKind accepts "list", "set", "queue" and "fifo".
func ParseContainerKind(s string) (ContainerKind, error) {
	switch strings.ToLower(s) {
	case "list":
		return KindList, nil
	case "set":
		return KindSet, nil
	case "queue", "fifo":
		return KindQueue, nil
	default:
		return KindList, fmt.Errorf("%w: unknown container kind %q", ErrConfiguration, s)
	}
}

// Collection decodes one view per split fragment of the body.
// Elem must declare a Split expression.
type Collection struct {
	Elem *Shape
	Kind ContainerKind
}

func ListOf(elem *Shape) Collection {
	return Collection{Elem: elem, Kind: KindList}
}

func SetOf(elem *Shape) Collection {
	return Collection{Elem: elem, Kind: KindSet}
}

func QueueOf(elem *Shape) Collection {
	return Collection{Elem: elem, Kind: KindQueue}
}

func (c Collection) String() string {
	name := "<nil>"
	if c.Elem != nil {
		name = c.Elem.Name()
	}
	return fmt.Sprintf("%s<%s>", c.Kind, name)
}

func (Collection) isTarget() {}
