package dataset

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
	"go.uber.org/zap"

	"github.com/unixpickle/stereovox/calib"
	"github.com/unixpickle/stereovox/camera"
	"github.com/unixpickle/stereovox/cloud"
	"github.com/unixpickle/stereovox/config"
	"github.com/unixpickle/stereovox/npy"
	"github.com/unixpickle/stereovox/voxel"
)

// Files names the inputs of one sample.
type Files struct {
	// Calibration is required.
	Calibration string

	// Disparity is a disparity PNG. At most one of
	// Disparity and Cloud may be set.
	Disparity string

	// Cloud is a raw float32 target-frame cloud with
	// CloudChannels values per point.
	Cloud         string
	CloudChannels int

	// StoredGroundTruth is an archive of precomputed grids,
	// used instead of building them.
	StoredGroundTruth string
}

// A Loader builds samples. It only reads its settings, so
// one Loader may serve several goroutines.
type Loader struct {
	provider calib.Provider
	filter   *cloud.Filter
	builder  *voxel.Builder
	baseline float64
	logger   *zap.SugaredLogger
}

// NewLoader creates a loader from validated settings.
func NewLoader(conf *config.Config, logger *zap.SugaredLogger) (*Loader, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	provider, err := conf.Provider()
	if err != nil {
		return nil, err
	}
	filter, err := conf.Filter()
	if err != nil {
		return nil, err
	}
	voxels, err := conf.VoxelConfig()
	if err != nil {
		return nil, err
	}
	builder := voxel.NewBuilder(voxels)
	builder.RelTol = conf.FlowRelTol
	return &Loader{
		provider: provider,
		filter:   filter,
		builder:  builder,
		baseline: conf.Baseline,
		logger:   logger,
	}, nil
}

// Load reads and processes one sample.
//
// Without a disparity map or cloud, the sample has no
// ground truth. If wantFlow is set, the cloud must carry
// flow channels (or the stored ground truth must contain
// flow grids).
func (l *Loader) Load(files Files, wantFlow bool) (*Sample, error) {
	if files.Disparity != "" && files.Cloud != "" {
		return nil, errors.New("load sample: both a disparity map and a cloud were given")
	}
	calibration, err := calib.ParseFile(l.provider, files.Calibration)
	if err != nil {
		return nil, err
	}
	sample := &Sample{Calibration: calibration}

	var raw *cloud.Cloud
	if files.Disparity != "" {
		raw, err = l.disparityCloud(sample, files.Disparity)
	} else if files.Cloud != "" {
		raw, err = readCloudFile(files.Cloud, files.CloudChannels)
	}
	if err != nil {
		return nil, err
	}
	if raw == nil {
		l.logger.Debugw("sample has no depth source", "calibration", files.Calibration)
		return sample, nil
	}

	sample.Cloud = l.filter.Apply(raw)
	l.logger.Debugw("filtered cloud", "points", raw.Len(), "kept", sample.Cloud.Len())

	if files.StoredGroundTruth != "" {
		sample.Grids, sample.Flows, err = LoadStoredGrids(files.StoredGroundTruth,
			l.builder.Config, wantFlow)
		if err != nil {
			return nil, err
		}
		l.logger.Debugw("loaded stored ground truth", "path", files.StoredGroundTruth)
		return sample, nil
	}

	start := time.Now()
	levels, err := l.builder.Build(sample.Cloud, wantFlow)
	if err != nil {
		return nil, err
	}
	for _, level := range levels {
		sample.Grids = append(sample.Grids, level.Occupancy)
		sample.Centers = append(sample.Centers, level.Centers)
		if wantFlow {
			sample.Flows = append(sample.Flows, level.Flow)
		}
		l.logger.Debugw("built level", "level", level.Index, "occupied", level.Occupancy.Count())
	}
	l.logger.Debugw("built voxel grids", "elapsed", time.Since(start))
	return sample, nil
}

func (l *Loader) disparityCloud(sample *Sample, path string) (*cloud.Cloud, error) {
	disp, err := camera.ReadDisparityFile(path)
	if err != nil {
		return nil, err
	}
	sample.ImageWidth, sample.ImageHeight = disp.Width, disp.Height
	proj, err := sample.Calibration.Primary.Projector()
	if err != nil {
		return nil, err
	}
	return proj.DisparityToCloud(disp, l.baseline), nil
}

func readCloudFile(path string, channels int) (*cloud.Cloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "read cloud")
	}
	defer f.Close()
	return cloud.ReadRaw(f, channels)
}

// LoadStoredGrids reads precomputed occupancy grids, and
// flow grids if wantFlow is set, checking them against the
// configured shapes.
func LoadStoredGrids(path string, conf *voxel.Config, wantFlow bool) ([]*voxel.Grid,
	[]*voxel.FlowGrid, error) {
	arrays, err := npy.LoadNPZ(path)
	if err != nil {
		return nil, nil, err
	}
	var grids []*voxel.Grid
	var flows []*voxel.FlowGrid
	for level := 0; level < voxel.NumLevels; level++ {
		shape := conf.Shape(level)
		arr, ok := arrays[GridName(level)]
		if !ok {
			return nil, nil, errors.Errorf("stored ground truth %s: missing %s", path, GridName(level))
		}
		if !arr.HasShape(shape.Array()) {
			return nil, nil, errors.Errorf("stored ground truth %s: level %d has shape %v, expected %v",
				path, level, arr.Shape, shape.Array())
		}
		data, err := arr.Uint8s()
		if err != nil {
			return nil, nil, errors.Wrap(err, path)
		}
		grid, err := voxel.NewGridData(shape, data)
		if err != nil {
			return nil, nil, errors.Wrap(err, path)
		}
		grids = append(grids, grid)

		if !wantFlow {
			continue
		}
		arr, ok = arrays[FlowName(level)]
		if !ok {
			return nil, nil, errors.Errorf("stored ground truth %s: missing %s", path, FlowName(level))
		}
		if !arr.HasShape(append(shape.Array(), 3)) {
			return nil, nil, errors.Errorf("stored ground truth %s: flow %d has shape %v",
				path, level, arr.Shape)
		}
		values, err := arr.Float64s()
		if err != nil {
			return nil, nil, errors.Wrap(err, path)
		}
		flow := voxel.NewFlowGrid(shape)
		for i := range flow.Data {
			flow.Data[i] = model3d.XYZ(values[i*3], values[i*3+1], values[i*3+2])
		}
		flows = append(flows, flow)
	}
	return grids, flows, nil
}
