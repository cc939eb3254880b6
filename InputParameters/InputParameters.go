package InputParameters

import (
	"fmt"

	"github.com/andyc101/gosdc/sdc"
	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file. Every field the run needs is
// explicit here and checked by Validate before any hierarchy is built.
type SDCParameters struct {
	Title         string  `yaml:"Title"`
	Problem       string  `yaml:"Problem"` // TestEquation | Heat | AdvectionDiffusion | AllenCahn
	NumSteps      int     `yaml:"NumSteps"`
	NumLevels     int     `yaml:"NumLevels"`
	NumNodes      []int   `yaml:"NumNodes"` // per level, finest first
	NodeType      string  `yaml:"NodeType"` // EQUID | LEGENDRE
	QuadType      string  `yaml:"QuadType"` // LOBATTO | RADAU-RIGHT | GAUSS
	QDelta        string  `yaml:"QDelta"`   // IE | LU
	RestTol       float64 `yaml:"RestTol"`
	MaxIter       int     `yaml:"MaxIter"`
	FinalTime     float64 `yaml:"FinalTime"`
	NVars         []int   `yaml:"NVars"` // per level, finest first
	Nu            float64 `yaml:"Nu"`
	C             float64 `yaml:"C"`
	Freq          int     `yaml:"Freq"`
	Lambda        float64 `yaml:"Lambda"`
	Eps           float64 `yaml:"Eps"`
	Radius        float64 `yaml:"Radius"`
	NewtonTol     float64 `yaml:"NewtonTol"`
	NewtonMaxIter int     `yaml:"NewtonMaxIter"`
	NewtonCoupled bool    `yaml:"NewtonCoupled"`
	Verbose       bool    `yaml:"Verbose"`
}

func (ip *SDCParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	return ip.Validate()
}

func paramErrorf(param, format string, args ...interface{}) error {
	return &sdc.ConfigurationError{Param: param, Msg: fmt.Sprintf(format, args...)}
}

// Validate fails fast on anything the controller would otherwise reject
// deep inside hierarchy construction.
func (ip *SDCParameters) Validate() error {
	switch ip.Problem {
	case "TestEquation", "Heat", "AdvectionDiffusion", "AllenCahn":
	default:
		return paramErrorf("Problem", "unknown Problem %q", ip.Problem)
	}
	if ip.NumSteps < 1 {
		return paramErrorf("NumSteps", "must be positive, got %d", ip.NumSteps)
	}
	if ip.NumLevels < 1 {
		return paramErrorf("NumLevels", "must be positive, got %d", ip.NumLevels)
	}
	if len(ip.NumNodes) != ip.NumLevels {
		return paramErrorf("NumNodes", "needs %d entries, got %d", ip.NumLevels, len(ip.NumNodes))
	}
	if len(ip.NVars) != ip.NumLevels {
		return paramErrorf("NVars", "needs %d entries, got %d", ip.NumLevels, len(ip.NVars))
	}
	if ip.FinalTime <= 0 {
		return paramErrorf("FinalTime", "must be positive, got %g", ip.FinalTime)
	}
	if ip.MaxIter < 1 {
		return paramErrorf("MaxIter", "must be positive, got %d", ip.MaxIter)
	}
	if ip.RestTol <= 0 {
		return paramErrorf("RestTol", "must be positive, got %g", ip.RestTol)
	}
	if ip.NewtonCoupled && ip.Problem != "AllenCahn" {
		return paramErrorf("NewtonCoupled", "needs a linearizable problem, %q is not", ip.Problem)
	}
	return nil
}

func (ip *SDCParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= Problem\n", ip.Problem)
	fmt.Printf("%d\t\t\t= NumSteps\n", ip.NumSteps)
	fmt.Printf("%d\t\t\t= NumLevels\n", ip.NumLevels)
	fmt.Printf("%v\t\t= NumNodes\n", ip.NumNodes)
	fmt.Printf("%v\t\t= NVars\n", ip.NVars)
	fmt.Printf("[%s/%s]\t= Nodes/Quadrature\n", ip.NodeType, ip.QuadType)
	fmt.Printf("[%s]\t\t\t= QDelta\n", ip.QDelta)
	fmt.Printf("%8.2e\t\t= RestTol\n", ip.RestTol)
	fmt.Printf("%d\t\t\t= MaxIter\n", ip.MaxIter)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
}
