/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/andyc101/gosdc/InputParameters"
	"github.com/andyc101/gosdc/model_problems/AdvectionDiffusion1D"
	"github.com/andyc101/gosdc/model_problems/AllenCahn1D"
	"github.com/andyc101/gosdc/model_problems/HeatEquation1D"
	"github.com/andyc101/gosdc/model_problems/TestEquation"
	"github.com/andyc101/gosdc/sdc"
	"github.com/andyc101/gosdc/utils"
	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// runCmd executes one configured integration run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Integrate a configured problem over the configured time-slices",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			ip InputParameters.SDCParameters
		)
		fileName, _ := cmd.Flags().GetString("file")
		graph, _ := cmd.Flags().GetBool("graph")
		delay, _ := cmd.Flags().GetInt("delay")
		prof, _ := cmd.Flags().GetBool("profile")
		verbose, _ := cmd.Flags().GetBool("verbose")
		data, err := os.ReadFile(fileName)
		if err != nil {
			fmt.Printf("unable to read configuration file %s: %v\n", fileName, err)
			os.Exit(1)
		}
		if err = ip.Parse(data); err != nil {
			fmt.Printf("bad configuration: %v\n", err)
			os.Exit(1)
		}
		ip.Verbose = ip.Verbose || verbose
		ip.Print()
		if prof {
			defer profile.Start().Stop()
		}
		RunSDC(&ip, graph, time.Duration(delay)*time.Millisecond)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("file", "f", "config.yaml", "YAML run configuration")
	runCmd.Flags().BoolP("graph", "g", false, "display the final solution in a graph")
	runCmd.Flags().IntP("delay", "d", 5000, "milliseconds to keep the graph window alive")
	runCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
	runCmd.Flags().BoolP("verbose", "v", false, "print residuals per iteration")
}

func RunSDC(ip *InputParameters.SDCParameters, graph bool, graphDelay time.Duration) {
	var (
		err  error
		u0   utils.Vector
		uend utils.Vector
		st   *sdc.Stats
	)
	desc, u0, xCoords, err := BuildDescription(ip)
	if err != nil {
		fmt.Printf("setup failed: %v\n", err)
		os.Exit(1)
	}
	desc.Verbose = ip.Verbose
	if graph && !ip.NewtonCoupled {
		desc.Hooks = append(desc.Hooks, newChartHook(xCoords, u0))
	}
	if ip.NewtonCoupled {
		var nc *sdc.NewtonController
		if nc, err = sdc.NewNewtonController(*desc, ip.NumSteps, ip.NewtonTol, ip.NewtonMaxIter); err == nil {
			uend, st, err = nc.Run(u0, 0, ip.FinalTime)
			if err == nil {
				fmt.Printf("outer Newton iterations: %d, inner solves: %d\n",
					nc.OuterIters, nc.InnerSolves)
			}
		}
	} else {
		var c *sdc.Controller
		if c, err = sdc.NewController(*desc, ip.NumSteps); err == nil {
			uend, st, err = c.Run(u0, 0, ip.FinalTime)
		}
	}
	if err != nil {
		fmt.Printf("run failed: %v\n", err)
		os.Exit(1)
	}
	printStats(st)
	if ref := referenceProblem(ip); ref != nil {
		errNorm := uend.Copy().Subtract(ref.Exact(ip.FinalTime)).InfNorm()
		fmt.Printf("error vs reference solution at t=%g: %10.4e\n", ip.FinalTime, errNorm)
	}
	if graph {
		if ip.NewtonCoupled {
			plotSolution(xCoords, uend, graphDelay)
		} else {
			time.Sleep(graphDelay)
		}
	}
}

// chartHook live-plots each slice's end value as the iterations converge.
type chartHook struct {
	sdc.BaseHook
	chart    *chart2d.Chart2D
	colorMap *utils2.ColorMap
	x        []float64
}

func newChartHook(x, u utils.Vector) *chartHook {
	h := &chartHook{
		chart: chart2d.NewChart2D(1280, 1024, float32(x.Min()), float32(x.Max()),
			float32(u.Min())-0.1, float32(u.Max())+0.1),
		colorMap: utils2.NewColorMap(-1, 1, 1),
		x:        x.DataP(),
	}
	go h.chart.Plot()
	return h
}

func (h *chartHook) PostIteration(c *sdc.Controller, s *sdc.Step) {
	name := fmt.Sprintf("U%d", s.ID)
	if err := h.chart.AddSeries(name, h.x, s.UEnd().DataP(), chart2d.NoGlyph, chart2d.Solid,
		h.colorMap.GetRGB(float32(s.ID%10)/5-1)); err != nil {
		panic("unable to add graph series")
	}
}

// BuildDescription wires the configured problem into a controller
// description and returns it with the initial value and plot coordinates.
func BuildDescription(ip *InputParameters.SDCParameters) (desc *sdc.Description, u0, x utils.Vector, err error) {
	var (
		ntype sdc.NodeType
		qtype sdc.QuadType
	)
	if ntype, err = sdc.ParseNodeType(ip.NodeType); err != nil {
		return
	}
	if qtype, err = sdc.ParseQuadType(ip.QuadType); err != nil {
		return
	}
	desc = &sdc.Description{
		NumLevels:  ip.NumLevels,
		NumNodes:   ip.NumNodes,
		NType:      ntype,
		QType:      qtype,
		QDeltaName: ip.QDelta,
		RestTol:    ip.RestTol,
		MaxIter:    ip.MaxIter,
	}
	switch ip.Problem {
	case "TestEquation":
		desc.NewProblem = func(level int) (sdc.Problem, error) {
			return TestEquation.New(TestEquation.Parameters{NVars: ip.NVars[level], Lambda: ip.Lambda})
		}
		p, perr := TestEquation.New(TestEquation.Parameters{NVars: ip.NVars[0], Lambda: ip.Lambda})
		if perr != nil {
			return nil, u0, x, perr
		}
		u0 = p.Exact(0)
		x = utils.NewVector(p.NVars())
		for i := 0; i < p.NVars(); i++ {
			x.SetVec(i, float64(i))
		}
	case "Heat":
		desc.NewProblem = func(level int) (sdc.Problem, error) {
			return HeatEquation1D.New(HeatEquation1D.Parameters{NVars: ip.NVars[level], Nu: ip.Nu, Freq: ip.Freq})
		}
		p, perr := HeatEquation1D.New(HeatEquation1D.Parameters{NVars: ip.NVars[0], Nu: ip.Nu, Freq: ip.Freq})
		if perr != nil {
			return nil, u0, x, perr
		}
		u0 = p.Exact(0)
		x = p.X
	case "AdvectionDiffusion":
		desc.IMEX = true
		desc.NewProblem = func(level int) (sdc.Problem, error) {
			return AdvectionDiffusion1D.New(AdvectionDiffusion1D.Parameters{
				NVars: ip.NVars[level], C: ip.C, Nu: ip.Nu, Freq: ip.Freq})
		}
		p, perr := AdvectionDiffusion1D.New(AdvectionDiffusion1D.Parameters{
			NVars: ip.NVars[0], C: ip.C, Nu: ip.Nu, Freq: ip.Freq})
		if perr != nil {
			return nil, u0, x, perr
		}
		u0 = p.Exact(0)
		x = p.X
	case "AllenCahn":
		desc.NewProblem = func(level int) (sdc.Problem, error) {
			return AllenCahn1D.New(AllenCahn1D.Parameters{
				NVars: ip.NVars[level], Eps: ip.Eps, Radius: ip.Radius,
				NewtonTol: ip.NewtonTol, NewtonMaxIter: ip.NewtonMaxIter})
		}
		p, perr := AllenCahn1D.New(AllenCahn1D.Parameters{
			NVars: ip.NVars[0], Eps: ip.Eps, Radius: ip.Radius,
			NewtonTol: ip.NewtonTol, NewtonMaxIter: ip.NewtonMaxIter})
		if perr != nil {
			return nil, u0, x, perr
		}
		u0 = p.InitialValue()
		x = p.X
	}
	return
}

func referenceProblem(ip *InputParameters.SDCParameters) sdc.ReferenceProblem {
	switch ip.Problem {
	case "TestEquation":
		p, _ := TestEquation.New(TestEquation.Parameters{NVars: ip.NVars[0], Lambda: ip.Lambda})
		return p
	case "Heat":
		p, _ := HeatEquation1D.New(HeatEquation1D.Parameters{NVars: ip.NVars[0], Nu: ip.Nu, Freq: ip.Freq})
		return p
	case "AdvectionDiffusion":
		p, _ := AdvectionDiffusion1D.New(AdvectionDiffusion1D.Parameters{
			NVars: ip.NVars[0], C: ip.C, Nu: ip.Nu, Freq: ip.Freq})
		return p
	}
	return nil
}

func printStats(st *sdc.Stats) {
	entries := st.Entries()
	for _, e := range sdc.SortByTime(sdc.FilterType(entries, "niter")) {
		fmt.Printf("step %3d  t=%8.5f  iterations = %3.0f\n", e.Step, e.Time, e.Value)
	}
	for _, e := range sdc.FilterType(entries, "timing_run") {
		fmt.Printf("run took %8.4f sec\n", e.Value)
	}
}

func plotSolution(x, u utils.Vector, graphDelay time.Duration) {
	var (
		xd = x.DataP()
		ud = u.DataP()
	)
	chart := chart2d.NewChart2D(1280, 1024, float32(x.Min()), float32(x.Max()),
		float32(u.Min()), float32(u.Max()))
	colorMap := utils2.NewColorMap(-1, 1, 1)
	go chart.Plot()
	if err := chart.AddSeries("U", xd, ud, chart2d.NoGlyph, chart2d.Solid,
		colorMap.GetRGB(0)); err != nil {
		panic("unable to add graph series")
	}
	time.Sleep(graphDelay)
}
