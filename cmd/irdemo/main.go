package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/infinicore/tengraph/pkg/ir"
	"github.com/infinicore/tengraph/pkg/ir/hostruntime"
	"k8s.io/klog/v2"
)

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	klog.InitFlags(nil)
	flag.Parse()

	log := klog.FromContext(ctx)
	rt := hostruntime.New()

	if err := runChainedTransposeDemo(log, rt); err != nil {
		return fmt.Errorf("chained-transpose demo: %w", err)
	}
	if err := runMatMulFusionDemo(log, rt); err != nil {
		return fmt.Errorf("matmul-fusion demo: %w", err)
	}
	return nil
}

// runChainedTransposeDemo mirrors the four-chained-transpose scenario:
// applying the same cyclic permutation four times is the identity, so
// optimize should collapse the whole chain away.
func runChainedTransposeDemo(log klog.Logger, rt ir.Runtime) error {
	g := ir.NewGraph(rt)

	x0 := g.AddTensor([]int64{1, 2, 3, 4}, ir.Float32)
	perm := []int{1, 2, 3, 0}

	cur := x0
	for i := 0; i < 4; i++ {
		op, err := g.AddTranspose(cur, nil, perm)
		if err != nil {
			return err
		}
		cur = op.Output()
	}
	g.MarkOutput(cur)

	if err := g.TopoSort(); err != nil {
		return err
	}
	if err := g.ShapeInfer(); err != nil {
		return err
	}
	if err := g.Optimize(); err != nil {
		return err
	}
	if err := g.TopoSort(); err != nil {
		return err
	}
	if err := g.CheckValid(); err != nil {
		return err
	}
	if err := g.DataMalloc(); err != nil {
		return err
	}

	log.Info("chained-transpose demo complete", "operators", len(g.Operators()))
	log.V(1).Info(g.String())
	return nil
}

// runMatMulFusionDemo mirrors the transpose-into-matmul scenario: a
// last-two-axis transpose feeding a MatMul gets absorbed into the
// MatMul's transA flag.
func runMatMulFusionDemo(log klog.Logger, rt ir.Runtime) error {
	g := ir.NewGraph(rt)

	a := g.AddTensor([]int64{4, 8}, ir.Float32)
	b := g.AddTensor([]int64{4, 16}, ir.Float32)

	tOp, err := g.AddTranspose(a, nil, []int{1, 0})
	if err != nil {
		return err
	}
	mOp, err := g.AddMatMul(tOp.Output(), b, nil, false, false)
	if err != nil {
		return err
	}
	g.MarkOutput(mOp.Output())

	if err := g.TopoSort(); err != nil {
		return err
	}
	if err := g.ShapeInfer(); err != nil {
		return err
	}
	if err := g.Optimize(); err != nil {
		return err
	}
	if err := g.TopoSort(); err != nil {
		return err
	}
	if err := g.CheckValid(); err != nil {
		return err
	}
	if err := g.DataMalloc(); err != nil {
		return err
	}

	log.Info("matmul-fusion demo complete", "operators", len(g.Operators()))
	log.V(1).Info(g.String())
	return nil
}
