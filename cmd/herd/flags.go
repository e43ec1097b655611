package main

// GlobalFlags holds persistent flags shared by every command.
type GlobalFlags struct {
	BaseDir  string
	LogLevel string
}

// SpawnFlags holds flags for spawn and spawn-multi.
type SpawnFlags struct {
	Type    string
	WorkDir string
}

// StopFlags holds flags for stop.
type StopFlags struct {
	All bool
}
