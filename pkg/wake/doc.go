// Package wake schedules a one-shot run of an arbitrary command at a future
// time by handing it to systemd as a transient timer.
//
// The caller picks a unit name which doubles as the handle for cancelling the
// job later. Nothing is tracked locally: Register spawns systemd-run, Deregister
// spawns systemctl stop, and systemd owns all state in between. There is no
// collision detection; two programs picking the same name will fight over it.
//
// At fire time systemd runs the systemd-wake launcher (cmd/systemd-wake), which
// resolves the original program and re-executes it with its original argv.
//
// Example:
//
//	name, err := wake.NewTimerName("beep-job-1")
//	if err != nil {
//		return err
//	}
//	cmd := wake.Command{Path: "play", Args: []string{"-q", "-n", "synth", "0.1", "sin", "880"}}
//	s := wake.NewScheduler()
//	if err := s.Register(ctx, time.Now().Add(time.Minute), name, cmd); err != nil {
//		return err
//	}
//	// changed our mind
//	if err := s.Deregister(ctx, name); err != nil && !errors.Is(err, wake.ErrNotFound) {
//		return err
//	}
package wake
