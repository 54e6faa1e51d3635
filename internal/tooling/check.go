// CLASSIFICATION: COMMUNITY
// Filename: check.go v0.1
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

package tooling

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pubserve/fileserver/static"
)

func newCheckCmd() *cobra.Command {
	var segments bool
	cmd := &cobra.Command{
		Use:   "check PATH...",
		Short: "Report whether request paths would be served",
		Long: `check applies the request path rule to each argument. Arguments are
percent-decoded first, as the server sees them. The exit status is 1 if any
path is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accept := color.New(color.FgGreen, color.Bold).SprintFunc()
			reject := color.New(color.FgRed, color.Bold).SprintFunc()
			faint := color.New(color.Faint).SprintFunc()
			out := cmd.OutOrStdout()

			rejected := 0
			for _, arg := range args {
				p, err := url.PathUnescape(arg)
				if err != nil {
					return fmt.Errorf("decode %q: %w", arg, err)
				}
				if _, ok := static.Validate(p); ok {
					fmt.Fprintf(out, "%s %s\n", accept("ACCEPT"), p)
				} else {
					rejected++
					idx, seg, _ := static.FirstRejected(p)
					fmt.Fprintf(out, "%s %s %s\n", reject("REJECT"), p,
						faint(fmt.Sprintf("(segment %d %q is %s)", idx, seg, static.ClassifySegment(seg))))
				}
				if segments {
					for i, part := range strings.Split(p, "/") {
						fmt.Fprintf(out, "  %d %-10s %q\n", i, static.ClassifySegment(part), part)
					}
				}
			}
			if rejected > 0 {
				return fmt.Errorf("%d of %d paths rejected", rejected, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&segments, "segments", false, "print every segment's classification")
	return cmd
}
