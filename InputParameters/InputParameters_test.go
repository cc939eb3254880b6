package InputParameters

import (
	"testing"

	"github.com/andyc101/gosdc/sdc"
	"github.com/stretchr/testify/assert"
)

var heatYAML = []byte(`
Title: heat test run
Problem: Heat
NumSteps: 4
NumLevels: 2
NumNodes: [5, 3]
NodeType: LEGENDRE
QuadType: RADAU-RIGHT
QDelta: LU
RestTol: 1.e-10
MaxIter: 30
FinalTime: 0.5
NVars: [63, 31]
Nu: 0.1
Freq: 1
`)

func TestParse(t *testing.T) {
	{
		var ip SDCParameters
		assert.NoError(t, ip.Parse(heatYAML))
		assert.Equal(t, "Heat", ip.Problem)
		assert.Equal(t, 4, ip.NumSteps)
		assert.Equal(t, []int{5, 3}, ip.NumNodes)
		assert.Equal(t, []int{63, 31}, ip.NVars)
		assert.Equal(t, "LU", ip.QDelta)
		assert.Equal(t, 0.1, ip.Nu)
		assert.False(t, ip.NewtonCoupled)
	}
	{ // not YAML at all
		var ip SDCParameters
		assert.Error(t, ip.Parse([]byte("Title: [")))
	}
}

func TestValidate(t *testing.T) {
	base := func() SDCParameters {
		var ip SDCParameters
		assert.NoError(t, ip.Parse(heatYAML))
		return ip
	}
	var ce *sdc.ConfigurationError
	{
		ip := base()
		ip.Problem = "Wave"
		assert.ErrorAs(t, ip.Validate(), &ce)
		assert.Equal(t, "Problem", ce.Param)
	}
	{
		ip := base()
		ip.NumNodes = []int{5}
		assert.ErrorAs(t, ip.Validate(), &ce)
	}
	{
		ip := base()
		ip.NVars = nil
		assert.ErrorAs(t, ip.Validate(), &ce)
	}
	{
		ip := base()
		ip.FinalTime = 0
		assert.ErrorAs(t, ip.Validate(), &ce)
	}
	{
		ip := base()
		ip.RestTol = 0
		assert.ErrorAs(t, ip.Validate(), &ce)
	}
	{ // the coupled mode is tied to the nonlinear problem
		ip := base()
		ip.NewtonCoupled = true
		assert.ErrorAs(t, ip.Validate(), &ce)
		ip.Problem = "AllenCahn"
		ip.Eps = 0.08
		ip.NewtonTol = 1.e-10
		ip.NewtonMaxIter = 20
		assert.NoError(t, ip.Validate())
	}
}
