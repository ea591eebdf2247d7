package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

func newBakeCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "bake <asset>",
		Short: "Bake the pose of every armature action to .pose files",
		Long: `Loads the asset, bakes every (armature object, action) pair in parallel and
writes <object>_<action>.pose into the output directory. Each file holds the
float32 translation frames followed by the quaternion frames in host byte order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			_, err := a.bake(ctx, args[0], outDir)
			return err
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

// bakeJob is one pose file to produce.
type bakeJob struct {
	object   string
	armature *skeleton.Armature
	action   *action.Action
}

// bake writes every pose file of the asset and returns their paths.
func (a *app) bake(ctx context.Context, path, outDir string) ([]string, error) {
	start := time.Now()

	asset, err := a.newLoader().Load(path)
	if err != nil {
		return nil, err
	}
	jobs, err := bakeJobs(asset)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	baker := a.newBaker()
	files := make([]string, len(jobs))
	var bytesWritten atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.cfg.Animation.BakeWorkers))
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			frames, err := baker.Bake(job.armature, job.action, skeleton.BonePointers(job.armature))
			if err != nil {
				return fmt.Errorf("bake %s/%s: %w", job.object, job.action.Name(), err)
			}
			out := filepath.Join(outDir, fmt.Sprintf("%s_%s.pose", job.object, job.action.Name()))
			n, err := writePose(out, frames)
			if err != nil {
				return err
			}
			bytesWritten.Add(n)
			files[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Info("bake complete",
		zap.String("asset", asset.Name),
		zap.Int("files", len(files)),
		zap.Int64("bytes", bytesWritten.Load()),
		zap.Duration("took", time.Since(start)),
	)
	return files, nil
}

// bakeJobs pairs every armature object with each of its actions that drives bones.
func bakeJobs(asset *loader.Asset) ([]bakeJob, error) {
	var jobs []bakeJob
	for _, obj := range asset.Objects {
		if obj.Type != animator.EntityArmature || obj.Armature == "" {
			continue
		}
		arm, ok := asset.Armatures[obj.Armature]
		if !ok {
			return nil, fmt.Errorf("%w: %q on object %q", loader.ErrUnknownArmature, obj.Armature, obj.Name)
		}
		for _, name := range obj.Actions {
			act, ok := asset.Action(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q on object %q", animator.ErrUnresolvedAnimation, name, obj.Name)
			}
			if act.NumBones() == 0 {
				continue
			}
			jobs = append(jobs, bakeJob{object: obj.Name, armature: arm, action: act})
		}
	}
	return jobs, nil
}

func writePose(path string, frames *action.PoseFrames) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create pose file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var n int64
	for _, block := range [][][]float32{frames.Trans, frames.Quats} {
		for _, frame := range block {
			written, err := w.Write(common.SliceToBytes(frame))
			n += int64(written)
			if err != nil {
				return n, fmt.Errorf("failed to write pose file: %w", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return n, fmt.Errorf("failed to write pose file: %w", err)
	}
	return n, f.Close()
}
