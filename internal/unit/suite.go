package unit

import "fmt"

// Test is one named scenario run against a freshly configured Device.
type Test struct {
	Name string
	Run  func(d *Device)
}

// Failure records one Test whose Run panicked.
type Failure struct {
	Name  string
	Panic any
}

func (f Failure) String() string { return fmt.Sprintf("%s: %v", f.Name, f.Panic) }

// RunSuite runs every test against a freshly built Device (via configure),
// recovering a panic in one test rather than letting it abort the rest of
// the batch — the Go analogue of the titan original's test() helper, which
// uses catch_unwind for the same purpose.
func RunSuite(configure func() (*Device, error), tests []Test) []Failure {
	var failures []Failure

	for _, test := range tests {
		func() {
			defer func() {
				if r := recover(); r != nil {
					failures = append(failures, Failure{Name: test.Name, Panic: r})
				}
			}()

			device, err := configure()
			if err != nil {
				failures = append(failures, Failure{Name: test.Name, Panic: err})
				return
			}

			test.Run(device)
		}()
	}

	return failures
}
