// Package module is the processing-module framework: a module publishes a
// Description (inputs, outputs, typed parameters), receives parsed Values,
// and runs its algorithm against named input objects.
//
// Execute drives one invocation:
//
//	ok, err := module.Execute(ctx, m, map[string]*bisobj.Image{"input": img},
//	    map[string]string{"xsp": "1.5"})
//
// A parameter problem is returned as an error before the algorithm runs. A
// failure inside the algorithm is reported only through the boolean result.
package module
