// CLASSIFICATION: COMMUNITY
// Filename: main.go v0.6
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

package main

import (
	"context"

	"pubserve/internal/tooling"
)

func main() {
	ctx, cancel := newSignalContext(context.Background())
	defer cancel()
	tooling.Execute(ctx)
}
