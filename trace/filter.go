package trace

// Type restricts what a trace is tested against.
type Type uint8

const (
	// TraceEverything tests the world, static props and bodies. The filter only applies to bodies.
	TraceEverything Type = iota
	// TraceWorldOnly tests only the static world.
	TraceWorldOnly
	// TraceEntitiesOnly skips the static world and static props.
	TraceEntitiesOnly
	// TraceEverythingFilterProps is TraceEverything with the filter applied to static props too.
	TraceEverythingFilterProps
)

func (t Type) String() string {
	switch t {
	case TraceEverything:
		return "everything"
	case TraceWorldOnly:
		return "world_only"
	case TraceEntitiesOnly:
		return "entities_only"
	case TraceEverythingFilterProps:
		return "everything_filter_props"
	}
	return "unknown"
}

// Filter decides which bodies a trace may hit.
type Filter interface {
	ShouldHitEntity(h Handle, mask Contents) bool
	Type() Type
}

// HitAll is a Filter that hits every body.
type HitAll struct{}

func (HitAll) ShouldHitEntity(Handle, Contents) bool { return true }
func (HitAll) Type() Type                            { return TraceEverything }

// SkipFilter ignores a single owner, usually the one doing the tracing.
type SkipFilter struct {
	Skip Handle
	Kind Type
}

// ShouldHitEntity ...
func (f SkipFilter) ShouldHitEntity(h Handle, _ Contents) bool {
	return f.Skip == nil || h != f.Skip
}

// Type ...
func (f SkipFilter) Type() Type {
	return f.Kind
}

// FilterFunc adapts a function to a Filter of the given type.
type FilterFunc struct {
	Fn   func(h Handle, mask Contents) bool
	Kind Type
}

func (f FilterFunc) ShouldHitEntity(h Handle, mask Contents) bool {
	return f.Fn == nil || f.Fn(h, mask)
}

func (f FilterFunc) Type() Type {
	return f.Kind
}
