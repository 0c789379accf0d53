// Package exhaustive finds small feature subsets whose classifiers hold up
// across independent datasets.
//
// For every (n, k) cell of a grid it takes the n best-ranked features, fits a
// classifier on every size-k subset of them with cross-validated
// hyperparameters, and keeps the subsets that score at least a threshold on
// every Training and Filtration dataset. Validation datasets are scored but
// never used to filter; the summary reports how many kept subsets also pass
// on them.
//
// # Quick Start
//
// Describe the run in YAML, with paths relative to the file:
//
//	data_path: data.csv            # samples x features, first column is the sample id
//	annotation_path: annotation.csv # Sample, Class, Dataset, Dataset type
//	n_k_path: n_k.csv               # n,k rows
//	output_dir: results
//	feature_selector: t_test
//	preprocessor: StandardScaler
//	classifier: LogisticRegression
//	classifier_cv_ranges:
//	  C: [0.01, 0.1, 1, 10]
//	classifier_cv_folds: 5
//	scoring_functions: [ROC_AUC, TPR, TNR, min_TPR_TNR]
//	main_scoring_function: min_TPR_TNR
//	main_scoring_threshold: 0.65
//	n_processes: 8
//	random_state: 0
//
// then run
//
//	exhaustive estimate config.yaml --max-k 5 --max-hours 12
//	exhaustive run config.yaml
//
// # Packages
//
//   - search: the driver, per-subset training and evaluation, summaries and run time estimates
//   - dataset: feature matrix, annotations and the partition view over them
//   - selection: feature pre-selectors and selectors
//   - sklearn/linear_model, sklearn/dummy: classifiers
//   - preprocessing: scalers fitted on Training rows only
//   - model_selection: k-fold splitting and grid search
//   - metrics: classification scores
//   - registry: configuration names to strategies
//   - config: YAML configuration
//   - report: CSV output and the retention plot
//   - core/model, core/parallel: capability interfaces and the worker pool
//   - pkg/errors, pkg/log: error types and structured logging
package exhaustive
