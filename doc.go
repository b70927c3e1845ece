// Package recordrig drives the RECORD behavioral rig: a microcontroller that
// lights feeder cost cues, opens reward valves and emits TTL sync pulses on
// command over a serial line.
//
// The package wraps three pieces. A protocol Driver sends single-character
// commands and reads the firmware's acknowledgment frames. A trial-list
// generator draws the feeder and cost level of every trial from weighted
// axes. A session controller runs the trial loop, timestamps every command
// and exports the session.
//
// # Basic Usage
//
//	cfg, err := recordrig.LoadSession("session.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	list, err := recordrig.GenerateTrialList(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	port := recordrig.NewSerialPort(recordrig.DefaultSerialConfig(), recordrig.WithLogger(logger))
//
//	summary, err := recordrig.RunSession(ctx, port, cfg, list,
//	    recordrig.WithLogger(logger),
//	    recordrig.WithDecider(recordrig.NewPromptDecider(os.Stdin, os.Stdout)),
//	    recordrig.WithExporters(recordrig.NewFileExporter(logger, "")),
//	)
//
// # Direct Device Access
//
// For diagnostics and reconfiguration use WithRig, which opens the device,
// hands the callback a ready Driver and closes it afterwards:
//
//	err := recordrig.WithRig(ctx, port, func(d *recordrig.Driver) error {
//	    d.AllOn(ctx)
//	    d.FetchResponse(ctx)
//
//	    return d.ReconfigureValve(ctx, 750)
//	}, recordrig.WithEcho(os.Stdout))
//
// # Error Handling
//
// Argument errors are rejected before anything is written to the device:
//
//	if verr, ok := errors.AsType[*recordrig.ValidationError](err); ok {
//	    log.Fatalf("bad %s: %v", verr.Field, verr.Value)
//	}
//	if errors.Is(err, recordrig.ErrSessionInterrupted) {
//	    log.Print("session stopped early; partial data was exported")
//	}
package recordrig
