// fkcheck validates the batched forward kinematics engine for a robot
// described by a URDF file: it samples joint configurations, runs the batched
// engine, compares the result against the single-sample reference kinematics
// (and against saved ground-truth data when provided), and prints error
// histograms. With -generate it writes new ground-truth files instead.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/batchfk/batchkin"
	"go.viam.com/batchfk/dataset"
	"go.viam.com/batchfk/evaluation"
	"go.viam.com/batchfk/referencechain"
	"go.viam.com/batchfk/referencechain/urdf"
	"go.viam.com/batchfk/spatialmath"
)

var logger = golog.NewDevelopmentLogger("fkcheck")

func main() {
	if err := realMain(os.Args[1:]); err != nil {
		logger.Fatal(err)
	}
}

func realMain(args []string) error {
	flags := flag.NewFlagSet("fkcheck", flag.ContinueOnError)
	urdfPath := flags.String("urdf", "", "path to the robot URDF file")
	name := flags.String("name", "", "robot name (defaults to the URDF robot name)")
	n := flags.Int("n", 500, "number of joint configurations to sample")
	seed := flags.Int64("seed", 0, "seed for the joint angle sampler")
	dataDir := flags.String("data", "", "directory of ground-truth file pairs")
	generate := flags.Bool("generate", false, "write ground-truth files instead of checking them")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *urdfPath == "" {
		return errors.New("-urdf is required")
	}

	chain, err := urdf.ParseFile(*urdfPath, *name)
	if err != nil {
		return err
	}
	engine, err := batchkin.NewEngine(chain, logger)
	if err != nil {
		return err
	}

	//nolint:gosec
	samples := referencechain.RandomInputs(chain, *n, rand.New(rand.NewSource(*seed)))
	batched, err := engine.ComputePoses(samples)
	if err != nil {
		return err
	}
	reference, err := referencePoses(chain, samples)
	if err != nil {
		return err
	}

	logger.Infof("robot %q: %d DoF, %d samples", chain.Name(), chain.DoF(), *n)
	if err := report("batched vs reference", batched, reference); err != nil {
		return err
	}

	if *dataDir == "" {
		return nil
	}
	if *generate {
		if err := dataset.Save(*dataDir, chain.Name(), samples, batched.RawMatrix()); err != nil {
			return err
		}
		logger.Infof("wrote ground-truth files for %q to %s", chain.Name(), *dataDir)
		return nil
	}

	gtAngles, gtPoses, err := dataset.Load(*dataDir, chain.Name())
	if err != nil {
		return err
	}
	gtBatched, err := engine.ComputePoses(gtAngles)
	if err != nil {
		return err
	}
	expected, err := spatialmath.NewPoseBatch(gtPoses)
	if err != nil {
		return err
	}
	return report("batched vs ground truth", gtBatched, expected)
}

// referencePoses runs the single-sample reference kinematics over each row of
// the batch.
func referencePoses(chain *referencechain.Chain, samples *mat.Dense) (*spatialmath.PoseBatch, error) {
	rows, _ := samples.Dims()
	out := mat.NewDense(rows, 7, nil)
	for i := 0; i < rows; i++ {
		pose, err := chain.Transform(samples.RawRowView(i))
		if err != nil {
			return nil, err
		}
		out.SetRow(i, pose)
	}
	return spatialmath.NewPoseBatch(out)
}

func report(what string, got, want *spatialmath.PoseBatch) error {
	summary, err := evaluation.Summarize(got, want)
	if err != nil {
		return err
	}
	logger.Infof("%s: positional error max=%.3g mean=%.3g, angular error max=%.3g mean=%.3g rad",
		what, summary.MaxL2, summary.MeanL2, summary.MaxAngular, summary.MeanAngular)

	fmt.Printf("%s positional error (m):\n", what)
	if err := histogram.Fprint(os.Stdout, histogram.Hist(9, summary.L2), histogram.Linear(40)); err != nil {
		return err
	}
	fmt.Printf("%s angular error (rad):\n", what)
	if err := histogram.Fprint(os.Stdout, histogram.Hist(9, summary.Angular), histogram.Linear(40)); err != nil {
		return err
	}

	if err := evaluation.PosesAlmostEqual(got, want, evaluation.DefaultMaxL2Err, evaluation.DefaultMaxAngularErr); err != nil {
		return errors.Wrapf(err, "%s mismatch", what)
	}
	return nil
}
