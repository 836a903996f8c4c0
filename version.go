package weave

// Release is the semantic version of this build. Release builds override
// it, together with GitCommit, using -ldflags "-X".
var Release = "v0.1.0-dev"

// GitCommit is the commit the binary was built from, if known.
var GitCommit = ""

// Version returns the version reported by the node and the command line.
func Version() string {
	if GitCommit == "" {
		return Release
	}
	return Release + " " + GitCommit
}
