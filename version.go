package stepper

// Version is the release of the stepper module. Overridden at build time with
// -ldflags "-X github.com/steltz/stepper.Version=...".
var Version = "0.3.0"
