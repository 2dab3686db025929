// Package simulation implements the degradation simulation engine.
//
// A run turns an ordered series of ambient temperature readings into a
// potency estimate:
//
//	raw readings -> Smooth -> Integrate (UpdateProductTemp + Kinetics.Rate per step)
//	             -> Forecast (same Step function on projected temperatures)
//	             -> Aggregate
//
// Every function in the pipeline is pure. Simulate holds no state between
// calls and touches no I/O, so independent investigations can run in
// parallel; Runner does that with a bounded worker pool and owns the logging.
//
// Usage:
//
//	res, err := simulation.Simulate(series, "Refrigerated", simulation.DefaultOptions())
//	if errors.Is(err, simulation.ErrModelViolation) {
//	    // defect, not a data problem
//	}
//	fmt.Println(res.Metrics.FinalPotencyPercent)
package simulation
