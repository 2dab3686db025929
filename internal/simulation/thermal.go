package simulation

import (
	"fmt"
	"math"
)

// UpdateProductTemp advances the product temperature by deltaHours using the
// exact solution of Newton's law of cooling, dT/dt = k*(Tsensor - Tproduct),
// with the sensor temperature held constant over the step:
//
//	Tnew = Tsensor + (Tprev - Tsensor) * exp(-k*dt)
//
// k is the thermal response constant in 1/hour; k == 0 models a perfectly
// insulated product. The result always lies between prev and sensor, so
// overshoot is impossible.
func UpdateProductTemp(prev, sensor, deltaHours, k float64) (float64, error) {
	if !(deltaHours >= 0) {
		return 0, fmt.Errorf("%w: time step must be non-negative, got %v hours", ErrInvalidParameter, deltaHours)
	}
	if !(k >= 0) || math.IsInf(k, 0) {
		return 0, fmt.Errorf("%w: thermal constant must be non-negative and finite, got %v", ErrInvalidParameter, k)
	}
	if k == 0 {
		return prev, nil
	}
	return sensor + (prev-sensor)*math.Exp(-k*deltaHours), nil
}
