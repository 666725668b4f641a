// Package smartcube provides a training core for QiYi smart Rubik's cubes
// connected via Bluetooth Low Energy (BLE).
//
// # Features
//
//   - Device discovery and connection with the encrypted QiYi protocol
//   - Move decoding with recovery of dropped notifications
//   - CFOP phase detection on any cross color
//   - Scramble checking with automatic correction of wrong turns
//   - Solve timer with inspection and per-phase splits
//
// # Quick Start
//
// Connect to a cube and time a solve:
//
//	devices, err := smartcube.Scan(ctx, 5*time.Second)
//	if err != nil || len(devices) == 0 {
//	    log.Fatal("no cube found")
//	}
//
//	session := smartcube.NewSession(smartcube.NewCFOPMode(source),
//	    smartcube.WithKey(key),
//	    smartcube.WithOnSolve(func(rec smartcube.SolveRecord) {
//	        fmt.Println("Solved in", rec.Duration)
//	    }),
//	)
//
//	conn, err := smartcube.Connect(ctx, devices[0], mac, key, session)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	session.RequestScramble(ctx)
//
// # Standalone Use
//
// The Cube type models the puzzle without a connection:
//
//	cube := smartcube.NewCube()
//	cube.Apply(smartcube.R, smartcube.U, smartcube.RPrime, smartcube.UPrime)
//	fmt.Println("Solved:", cube.IsSolved())
//
// A Session can also be fed frames directly with HandleNotification, which
// is how recorded or simulated sessions are replayed.
//
// # Solving Phases
//
// The Tracker follows CFOP on whichever face the cross is built:
//
//   - PhaseScrambled: no cross yet
//   - PhaseCrossSolved: a cross is complete
//   - PhaseF2LProgress: at least one F2L pair is inserted
//   - PhaseOLL: all four pairs are inserted
//   - PhasePLL: the last layer is oriented
//   - PhaseSolved: the cube is solved
package smartcube
