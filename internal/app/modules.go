package app

import (
	"github.com/gravigo-ml/gravigo/handlers/earlystopping"
	"github.com/gravigo-ml/gravigo/handlers/lrmonitor"
	"github.com/gravigo-ml/gravigo/handlers/lrscheduler"
	"github.com/gravigo-ml/gravigo/handlers/memmonitor"
	"github.com/gravigo-ml/gravigo/handlers/paramanalyzer"
	"github.com/gravigo-ml/gravigo/internal/builtin"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// coreModules is the definitive list of all modules that are compiled into
// the gravigo binary.
var coreModules = []registry.Module{
	&builtin.Engines{},
	&builtin.Networks{},
	&builtin.Criterions{},
	&builtin.Metrics{},
	&builtin.Optimizers{},
	&builtin.Schedulers{},
	&builtin.Sources{},
	&builtin.Trackers{},
	&earlystopping.Module{},
	&lrmonitor.Module{},
	&lrscheduler.Module{},
	&memmonitor.Module{},
	&paramanalyzer.Module{},
}
