// Package log defines standard attribute keys.
//
// Keys follow a hierarchical naming convention ("search.n", "data.samples") so
// log lines from different components can be filtered the same way.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the classifier or preprocessor type.
	ModelNameKey = "model.name"

	// OperationKey names the operation: "fit", "predict", "transform", "score".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package emitting the record.
	ComponentKey = "ml.component"

	// PhaseKey indicates the search phase: "preselection", "selection", "search", "estimate".
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	DatasetKey  = "data.dataset"
	DatasetsKey = "data.datasets"

	// PartitionKey is the partition label: Training, Filtration or Validation.
	PartitionKey = "data.partition"
)

// Exhaustive search context.
const (
	NKey        = "search.n"
	KKey        = "search.k"
	CellsKey    = "search.cells"
	SubsetsKey  = "search.subsets"
	SubsetKey   = "search.subset"
	WorkersKey  = "search.workers"
	WorkerIDKey = "search.worker"

	// SampledKey is the configured n_feature_subsets when subset limiting is on.
	SampledKey = "search.sampled"
	PassedKey  = "search.passed"
	SkippedKey = "search.skipped"

	// ValidatedKey counts kept subsets that also meet the threshold on
	// every Validation dataset.
	ValidatedKey = "search.validated"
	RetentionKey = "search.retention_percent"
)

// Performance.
const (
	DurationMsKey      = "perf.duration_ms"
	DurationSecondsKey = "perf.duration_seconds"

	// EstimatedHoursKey is the projected full-enumeration time of an (n, k) cell.
	EstimatedHoursKey = "perf.estimated_hours"
)

// Configuration.
const (
	HyperParamsKey = "model.hyperparams"
	ScorerKey      = "metrics.scorer"
	ThresholdKey   = "metrics.threshold"
	RandomSeedKey  = "config.random_seed"
	ConfigPathKey  = "config.path"
	OutputDirKey   = "config.output_dir"
)

// Error context.
const (
	ErrorTypeKey  = "error.type"
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"

	PhasePreselection = "preselection"
	PhaseSelection    = "selection"
	PhaseSearch       = "search"
	PhaseEstimate     = "estimate"
)
