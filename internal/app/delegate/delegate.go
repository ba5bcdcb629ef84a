// Package delegate forwards field and method access on an owner value to a
// target value the owner holds, so that callers reading or writing a field
// on the owner transparently read or write the same field on the target.
//
// Bindings are recorded once on a [Template] and apply to every owner value
// of that type. A Template is mutable only during setup; call Freeze before
// the first concurrent use. After Freeze the Template is read-only and safe
// to share across goroutines.
//
//	tpl := delegate.NewTemplate[*Context]("context")
//	toResponse := delegate.For(tpl, "response", func(c *Context) *Response { return c.response })
//	body := delegate.MustAccess(toResponse, "body", (*Response).Body, (*Response).SetBody)
//	tpl.Freeze()
//
//	body.Set(ctx, "hello") // same as ctx.response.SetBody("hello")
package delegate

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrDuplicate    = errors.New("delegate: binding already defined")
	ErrFrozen       = errors.New("delegate: template is frozen")
	ErrUnknown      = errors.New("delegate: no binding with that name")
	ErrReadOnly     = errors.New("delegate: binding is read-only")
	ErrWriteOnly    = errors.New("delegate: binding is write-only")
	ErrTypeMismatch = errors.New("delegate: value type mismatch")
	ErrNilTarget    = errors.New("delegate: target is nil")
	ErrEmptyName    = errors.New("delegate: binding name must not be empty")
)

// Kind describes what a binding forwards.
type Kind int

// Binding kinds.
const (
	KindGetter Kind = iota + 1
	KindSetter
	KindAccess
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindGetter:
		return "getter"
	case KindSetter:
		return "setter"
	case KindAccess:
		return "access"
	case KindMethod:
		return "method"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Binding describes one forwarding rule recorded on a Template.
type Binding struct {
	Name   string
	Target string
	Kind   Kind
}

// binding is the type-erased form of a rule, used for by-name access.
type binding[O any] struct {
	Binding
	get    func(O) any
	set    func(O, any) error
	method func(O) any
}

// Template holds the forwarding bindings shared by all owners of type O.
// It never holds per-owner state.
type Template[O any] struct {
	name     string
	frozen   bool
	bindings map[string]*binding[O]
	order    []string
}

// NewTemplate creates an empty, unfrozen Template. The name is used in
// error messages only.
func NewTemplate[O any](name string) *Template[O] {
	return &Template[O]{
		name:     name,
		bindings: make(map[string]*binding[O]),
	}
}

// Name returns the template name.
func (t *Template[O]) Name() string {
	return t.name
}

// Freeze makes the template read-only. Defining a binding afterwards
// returns ErrFrozen. Freeze is idempotent.
func (t *Template[O]) Freeze() {
	t.frozen = true
}

// Frozen reports whether Freeze has been called.
func (t *Template[O]) Frozen() bool {
	return t.frozen
}

// Names returns binding names in definition order.
func (t *Template[O]) Names() []string {
	names := make([]string, len(t.order))
	copy(names, t.order)
	return names
}

// Lookup returns the binding registered under name.
func (t *Template[O]) Lookup(name string) (Binding, bool) {
	b, ok := t.bindings[name]
	if !ok {
		return Binding{}, false
	}
	return b.Binding, true
}

// Get reads the named field through its target. For method bindings the
// returned value is the target's bound method.
func (t *Template[O]) Get(owner O, name string) (any, error) {
	b, ok := t.bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknown, t.name, name)
	}
	switch {
	case b.method != nil:
		return b.method(owner), nil
	case b.get != nil:
		return b.get(owner), nil
	default:
		return nil, fmt.Errorf("%w: %s.%s", ErrWriteOnly, t.name, name)
	}
}

// Set writes the named field through its target. The value must be
// assignable to the field type; nil assigns the zero value.
func (t *Template[O]) Set(owner O, name string, value any) error {
	b, ok := t.bindings[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknown, t.name, name)
	}
	if b.set == nil {
		return fmt.Errorf("%w: %s.%s", ErrReadOnly, t.name, name)
	}
	return b.set(owner, value)
}

func (t *Template[O]) define(b *binding[O]) error {
	if b.Name == "" {
		return ErrEmptyName
	}
	if t.frozen {
		return fmt.Errorf("%w: cannot define %s.%s", ErrFrozen, t.name, b.Name)
	}
	if prev, ok := t.bindings[b.Name]; ok {
		return fmt.Errorf("%w: %s.%s already forwards to %q as %s",
			ErrDuplicate, t.name, b.Name, prev.Target, prev.Kind)
	}
	t.bindings[b.Name] = b
	t.order = append(t.order, b.Name)
	return nil
}

// Delegator forwards bindings on owner type O to the target of type *T
// selected from each owner.
type Delegator[O, T any] struct {
	tpl    *Template[O]
	target string
	sel    func(O) *T
}

// For creates a Delegator that resolves the target named target via sel.
func For[O, T any](tpl *Template[O], target string, sel func(O) *T) *Delegator[O, T] {
	return &Delegator[O, T]{tpl: tpl, target: target, sel: sel}
}

// Target returns the target field name.
func (d *Delegator[O, T]) Target() string {
	return d.target
}

// resolve returns the owner's target. A nil target is a programming error
// and panics with an error wrapping ErrNilTarget.
func (d *Delegator[O, T]) resolve(owner O, name string) *T {
	target := d.sel(owner)
	if target == nil {
		panic(fmt.Errorf("%w: %s.%s forwards to unset %q", ErrNilTarget, d.tpl.name, name, d.target))
	}
	return target
}

// Field is a typed handle to a forwarded field.
type Field[O, V any] struct {
	name string
	get  func(O) V
	set  func(O, V)
}

// Name returns the field name.
func (f *Field[O, V]) Name() string {
	return f.name
}

// Get reads the field from the owner's target.
// Panics with ErrWriteOnly if the field has no getter.
func (f *Field[O, V]) Get(owner O) V {
	if f.get == nil {
		panic(fmt.Errorf("%w: %s", ErrWriteOnly, f.name))
	}
	return f.get(owner)
}

// Set writes the field on the owner's target.
// Panics with ErrReadOnly if the field has no setter.
func (f *Field[O, V]) Set(owner O, value V) {
	if f.set == nil {
		panic(fmt.Errorf("%w: %s", ErrReadOnly, f.name))
	}
	f.set(owner, value)
}

// Getter installs a read-only binding: reading name on the owner returns
// get(target).
func Getter[O, T, V any](d *Delegator[O, T], name string, get func(*T) V) (*Field[O, V], error) {
	return bindField(d, name, KindGetter, get, nil)
}

// Setter installs a write-only binding: writing name on the owner calls
// set(target, value).
func Setter[O, T, V any](d *Delegator[O, T], name string, set func(*T, V)) (*Field[O, V], error) {
	return bindField(d, name, KindSetter, nil, set)
}

// Access installs a read/write binding.
func Access[O, T, V any](d *Delegator[O, T], name string, get func(*T) V, set func(*T, V)) (*Field[O, V], error) {
	return bindField(d, name, KindAccess, get, set)
}

func bindField[O, T, V any](d *Delegator[O, T], name string, kind Kind, get func(*T) V, set func(*T, V)) (*Field[O, V], error) {
	f := &Field[O, V]{name: name}
	b := &binding[O]{Binding: Binding{Name: name, Target: d.target, Kind: kind}}

	if get != nil {
		f.get = func(owner O) V { return get(d.resolve(owner, name)) }
		b.get = func(owner O) any { return f.get(owner) }
	}
	if set != nil {
		f.set = func(owner O, v V) { set(d.resolve(owner, name), v) }
		b.set = func(owner O, value any) error {
			if value == nil {
				var zero V
				f.set(owner, zero)
				return nil
			}
			v, ok := value.(V)
			if !ok {
				return fmt.Errorf("%w: %s.%s wants %s, got %T",
					ErrTypeMismatch, d.tpl.name, name, reflect.TypeFor[V](), value)
			}
			f.set(owner, v)
			return nil
		}
	}

	if err := d.tpl.define(b); err != nil {
		return nil, err
	}
	return f, nil
}

// Forwarder is a typed handle to a forwarded method.
type Forwarder[O, F any] struct {
	name string
	bind func(O) F
}

// Name returns the method name.
func (m *Forwarder[O, F]) Name() string {
	return m.name
}

// Bind returns the target's method bound to the target as receiver.
// Arguments, results and panics pass through unchanged when it is called.
func (m *Forwarder[O, F]) Bind(owner O) F {
	return m.bind(owner)
}

// Method installs a method binding. method extracts the bound method value
// from the target, e.g. func(r *Request) func() string { return r.Method }.
func Method[O, T, F any](d *Delegator[O, T], name string, method func(*T) F) (*Forwarder[O, F], error) {
	fw := &Forwarder[O, F]{
		name: name,
		bind: func(owner O) F { return method(d.resolve(owner, name)) },
	}
	b := &binding[O]{
		Binding: Binding{Name: name, Target: d.target, Kind: KindMethod},
		method:  func(owner O) any { return fw.bind(owner) },
	}
	if err := d.tpl.define(b); err != nil {
		return nil, err
	}
	return fw, nil
}

// MustGetter is like Getter but panics on error. It simplifies package-level
// template setup.
func MustGetter[O, T, V any](d *Delegator[O, T], name string, get func(*T) V) *Field[O, V] {
	return must(Getter(d, name, get))
}

// MustSetter is like Setter but panics on error.
func MustSetter[O, T, V any](d *Delegator[O, T], name string, set func(*T, V)) *Field[O, V] {
	return must(Setter(d, name, set))
}

// MustAccess is like Access but panics on error.
func MustAccess[O, T, V any](d *Delegator[O, T], name string, get func(*T) V, set func(*T, V)) *Field[O, V] {
	return must(Access(d, name, get, set))
}

// MustMethod is like Method but panics on error.
func MustMethod[O, T, F any](d *Delegator[O, T], name string, method func(*T) F) *Forwarder[O, F] {
	return must(Method(d, name, method))
}

func must[V any](v V, err error) V {
	if err != nil {
		panic(err)
	}
	return v
}
