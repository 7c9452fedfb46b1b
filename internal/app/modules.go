package app

import (
	"github.com/specialistvlad/stitchgrid/internal/registry"
	"github.com/specialistvlad/stitchgrid/modules/arithmetic"
	"github.com/specialistvlad/stitchgrid/modules/compare"
	"github.com/specialistvlad/stitchgrid/modules/counter"
	"github.com/specialistvlad/stitchgrid/modules/logic"
	"github.com/specialistvlad/stitchgrid/modules/loops"
	"github.com/specialistvlad/stitchgrid/modules/network"
	"github.com/specialistvlad/stitchgrid/modules/pack"
	"github.com/specialistvlad/stitchgrid/modules/pulses"
	"github.com/specialistvlad/stitchgrid/modules/utility"
)

// coreModules is the definitive list of all node modules that are compiled
// into the stitchgrid binary.
var coreModules = []registry.Module{
	&logic.Module{},
	&compare.Module{},
	&counter.Module{},
	&pulses.Module{},
	&pack.Module{},
	&arithmetic.Module{},
	&utility.Module{},
	&loops.Module{},
	&network.Module{},
}
