// Package mirrorloop reproduces the Mirror Loop analysis curves from cached
// results.
//
// Usage:
//
//	rows, err := helpers.ParseCSV(data, schema.Default())
//	result, err := engine.Execute(engine.NewRowView(rows),
//	    engine.WithWindows(engine.DefaultEarlyWindow, engine.DefaultLateWindow),
//	)
//	figures, err := render.NewRenderer(fs, "figures", render.DefaultOptions()).
//	    SaveAll(ctx, result.Charts()...)
//
// The engine pools rows by iteration and builds chart configs and the
// early/late ΔI summary. It never touches the filesystem; loading lives in
// dataset and helpers, drawing in render. The mirrorloop command wires
// them together.
package mirrorloop
