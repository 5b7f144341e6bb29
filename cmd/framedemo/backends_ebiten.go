//go:build !headless

package main

import _ "github.com/gogpu/framekit/backend/ebiten"
