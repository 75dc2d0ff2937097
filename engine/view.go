package engine

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns loaded rows. It reads through this interface.
//
// Implementations:
//   DomainView[T]  — reads typed structs via accessor functions (zero-copy)
//   SubView        — filtered subset (indices into parent, zero-copy)
//
// NewRowView binds []Row through the default row adapter.
// ============================================================================

// RecordView provides indexed access to a dataset.
// Measure reports false when the cell is absent.
type RecordView interface {
	Len() int
	Iteration(index int) int
	Dimension(index int, key string) string
	Measure(index int, key string) (float64, bool)
	DimensionKeys() []string
	MeasureKeys() []string
}

// rowAdapter maps Row fields onto view keys.
var rowAdapter = NewDomainAdapter[Row](func(r Row) int { return r.Iteration }).
	Dimension(ColModel, func(r Row) string { return r.Model }).
	Dimension(ColCondition, func(r Row) string { return r.Condition }).
	Measure(ColEditChange, func(r Row) Measurement { return r.EditChange }).
	Measure(ColNgramNovelty, func(r Row) Measurement { return r.NgramNovelty })

// NewRowView creates a RecordView over rows.
func NewRowView(rows []Row) RecordView {
	return rowAdapter.Bind(rows)
}

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent — no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Iteration(i int) int {
	if i < 0 || i >= len(v.indices) {
		return -1
	}
	return v.parent.Iteration(v.indices[i])
}

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) (float64, bool) {
	if i < 0 || i >= len(v.indices) {
		return 0, false
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewDomainAdapter[Run](func(r Run) int { return r.Step }).
//	    Dimension("model", func(r Run) string { return r.Provider }).
//	    Measure("edit_change", func(r Run) engine.Measurement { return engine.Value(r.Delta) })
//
//	points, _ := engine.Execute(adapter.Bind(runs))
//
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	iteration func(T) int
	dimOrder  []string
	mesOrder  []string
	dims      map[string]func(T) string
	meas      map[string]func(T) Measurement
}

// NewDomainAdapter creates a new adapter for type T with its iteration accessor.
func NewDomainAdapter[T any](iteration func(T) int) *DomainAdapter[T] {
	return &DomainAdapter[T]{
		iteration: iteration,
		dims:      make(map[string]func(T) string),
		meas:      make(map[string]func(T) Measurement),
	}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimOrder = append(a.dimOrder, key)
	}
	a.dims[key] = fn
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) Measurement) *DomainAdapter[T] {
	if _, exists := a.meas[key]; !exists {
		a.mesOrder = append(a.mesOrder, key)
	}
	a.meas[key] = fn
	return a
}

// Bind creates a RecordView from a data slice. Zero-copy — holds reference.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:      data,
		iteration: a.iteration,
		dims:      a.dims,
		meas:      a.meas,
		dimKeys:   a.dimOrder,
		measKeys:  a.mesOrder,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data      []T
	iteration func(T) int
	dims      map[string]func(T) string
	meas      map[string]func(T) Measurement
	dimKeys   []string
	measKeys  []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Iteration(i int) int {
	if i < 0 || i >= len(v.data) {
		return -1
	}
	return v.iteration(v.data[i])
}

func (v *DomainView[T]) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.data) {
		return ""
	}
	if fn, ok := v.dims[key]; ok {
		return fn(v.data[i])
	}
	return ""
}

func (v *DomainView[T]) Measure(i int, key string) (float64, bool) {
	if i < 0 || i >= len(v.data) {
		return 0, false
	}
	fn, ok := v.meas[key]
	if !ok {
		return 0, false
	}
	m := fn(v.data[i])
	return m.Value, m.Valid
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.measKeys }
