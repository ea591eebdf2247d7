package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <asset>",
		Short: "Print the actions and objects of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := a.newLoader().Load(args[0])
			if err != nil {
				return err
			}
			return inspect(cmd.OutOrStdout(), asset)
		},
	}
}

func inspect(out io.Writer, asset *loader.Asset) error {
	fmt.Fprintf(out, "asset %s (%s)\n\n", asset.Name, asset.Source)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tRANGE\tSAMPLES\tPARAMS\tBONES")
	for _, act := range asset.Actions {
		start, end := act.FrameRange()
		fmt.Fprintf(tw, "%s\t%g-%g\t%d\t%d\t%s\n",
			act.Name(), start, end, act.NumSamples(), len(act.ParamNames()), list(act.BoneNames()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OBJECT\tTYPE\tARMATURE\tACTIONS\tPARTICLES")
	for _, obj := range asset.Objects {
		particles := make([]string, len(obj.ParticleSystems))
		for i, ps := range obj.ParticleSystems {
			particles[i] = ps.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			obj.Name, obj.Type, dash(obj.Armature), list(obj.Actions), list(particles))
	}
	return tw.Flush()
}

func list(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ",")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
