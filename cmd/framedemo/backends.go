package main

// The software backend is always linked. Window backends are added by the
// build-tagged files next to this one.
import _ "github.com/gogpu/framekit/backend/software"
