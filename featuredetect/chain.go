package featuredetect

import (
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
)

// Matcher picks out one link of an options chain
type Matcher func(link common.Options) bool

// OfType matches links of type T, e.g. OfType[core1_2.SemaphoreTypeCreateInfo]()
func OfType[T common.Options]() Matcher {
	return func(link common.Options) bool {
		_, ok := link.(T)
		return ok
	}
}

// AnyOf matches a link any of the matchers accept
func AnyOf(matchers ...Matcher) Matcher {
	return func(link common.Options) bool {
		for _, match := range matchers {
			if match(link) {
				return true
			}
		}
		return false
	}
}

// Find returns the first link of the chain starting at root, root included, that match accepts
func Find(root common.Options, match Matcher) common.Options {
	for link := root; link != nil; link = link.NextOptionsInChain() {
		if match(link) {
			return link
		}
	}
	return nil
}

// FindParent returns the link pointing at the first link match accepts. It returns nil when
// nothing matches or when root itself matches.
func FindParent(root common.Options, match Matcher) common.Options {
	var parent common.Options
	for link := root; link != nil; link = link.NextOptionsInChain() {
		if match(link) {
			return parent
		}
		parent = link
	}
	return nil
}

// relink returns a copy of link whose next pointer is next. Pointer links are copied as well
// so the caller's structs are never modified.
func relink(link common.Options, next common.Options) (common.Options, error) {
	value := reflect.ValueOf(link)
	pointer := value.Kind() == reflect.Pointer
	if pointer {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, errors.Newf("cannot relink %T", link)
	}

	copied := reflect.New(value.Type()).Elem()
	copied.Set(value)

	field := copied.FieldByName("NextOptions")
	if !field.IsValid() || field.Type() != reflect.TypeOf(common.NextOptions{}) {
		return nil, errors.Newf("%T does not embed common.NextOptions", link)
	}
	field.Set(reflect.ValueOf(common.NextOptions{Next: next}))

	if pointer {
		return copied.Addr().Interface().(common.Options), nil
	}
	return copied.Interface().(common.Options), nil
}

// Remove unlinks the first link match accepts from the chain starting at head, head included,
// and returns the new head. The links before the removed one are copied.
func Remove(head common.Options, match Matcher) (common.Options, bool, error) {
	var before []common.Options
	link := head
	for link != nil && !match(link) {
		before = append(before, link)
		link = link.NextOptionsInChain()
	}
	if link == nil {
		return head, false, nil
	}

	tail := link.NextOptionsInChain()
	for i := len(before) - 1; i >= 0; i-- {
		var err error
		tail, err = relink(before[i], tail)
		if err != nil {
			return head, false, err
		}
	}
	return tail, true, nil
}
