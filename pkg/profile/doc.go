// Package profile loads optimization profiles from YAML files and keeps them
// current while the process runs.
//
// A Watcher is typically paired with optimize.WithBaseFunc so that managers
// created after an edit derive their config from the new profile:
//
//	w, err := profile.NewWatcher("profile.yaml", profile.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//	go w.Run(ctx)
//
//	reg := telemetry.NewRegistry(
//		telemetry.WithOptimizeOptions(optimize.WithBaseFunc(w.Current)),
//	)
package profile
