package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	randomforest "github.com/malaschitz/randomForest"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

const (
	// MinTrainingRows is the smallest cleaned table the classifier accepts.
	MinTrainingRows = 50

	testFraction     = 0.2
	randomSeed       = 42
	forestTrees      = 100
	maxSplitAttempts = 10
)

var (
	ErrInsufficientData = errors.New("classifier: not enough rows to train")
	ErrDegenerateLabel  = errors.New("classifier: slow label is constant")
	ErrDegenerateSplit  = errors.New("classifier: held-out rows are single-class")
)

// featureSpec maps categorical levels and temporal fields onto encoded
// columns. families groups the one-hot columns of a single source feature so
// importance is reported per feature, not per level.
type featureSpec struct {
	columns  []string
	families []string
	colsOf   map[string][]int
}

// TrainClassifier labels every row slow = response time above the global
// median, trains a bagged random-forest ensemble on encoded categorical and
// temporal features, and evaluates ranking quality on a held-out 20% split
// with a fixed seed, re-drawing the split while the held-out rows are
// single-class. Feature importance is permutation-based: the mean AUC
// drop when a feature family is shuffled on the held-out rows.
func TrainClassifier(rows []models.ServiceRequest) (*models.ClassifierArtifact, error) {
	if len(rows) < MinTrainingRows {
		return nil, fmt.Errorf("%w: have %d rows, need %d", ErrInsufficientData, len(rows), MinTrainingRows)
	}

	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.ResponseTimeDays
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	threshold := quantileLinear(0.5, sorted)

	labels := make([]int, len(rows))
	positives := 0
	for i, v := range values {
		if v > threshold {
			labels[i] = 1
			positives++
		}
	}
	if positives == 0 || positives == len(rows) {
		return nil, ErrDegenerateLabel
	}

	spec := buildFeatureSpec(rows)
	features := make([][]float64, len(rows))
	for i, r := range rows {
		features[i] = spec.encode(r)
	}

	rng := rand.New(rand.NewSource(randomSeed))
	nTest := int(float64(len(rows)) * testFraction)
	if nTest < 1 {
		nTest = 1
	}
	// a single-class hold-out leaves the AUC undefined; re-draw the split
	// (still off the fixed seed) rather than let NaN reach the artifact
	var testIdx, trainIdx []int
	for attempt := 0; ; attempt++ {
		perm := rng.Perm(len(rows))
		testIdx, trainIdx = perm[:nTest], perm[nTest:]
		if hasBothClasses(labels, testIdx) {
			break
		}
		if attempt+1 == maxSplitAttempts {
			return nil, ErrDegenerateSplit
		}
	}

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = features[idx]
		trainY[i] = labels[idx]
	}

	forest := randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: trainX, Class: trainY}
	forest.Train(forestTrees)

	testX := make([][]float64, len(testIdx))
	testY := make([]int, len(testIdx))
	predictions := make([]models.Prediction, len(testIdx))
	scores := make([]float64, len(testIdx))
	for i, idx := range testIdx {
		testX[i] = features[idx]
		testY[i] = labels[idx]
		scores[i] = slowScore(&forest, features[idx])
		predictions[i] = models.Prediction{
			UniqueKey: rows[idx].UniqueKey,
			Actual:    labels[idx] == 1,
			Score:     scores[i],
		}
	}

	auc := rocAUC(scores, testY)

	importances := make([]models.FeatureImportance, 0, len(spec.families))
	for _, family := range spec.families {
		permuted := permuteColumns(testX, spec.colsOf[family], rng)
		permScores := make([]float64, len(permuted))
		for i, x := range permuted {
			permScores[i] = slowScore(&forest, x)
		}
		importances = append(importances, models.FeatureImportance{
			Feature:    family,
			Importance: auc - rocAUC(permScores, testY),
		})
	}
	sort.SliceStable(importances, func(i, j int) bool {
		return importances[i].Importance > importances[j].Importance
	})

	return &models.ClassifierArtifact{
		Threshold:   threshold,
		TrainRows:   len(trainIdx),
		TestRows:    len(testIdx),
		AUC:         auc,
		Importances: importances,
		Predicted:   predictions,
	}, nil
}

func hasBothClasses(labels []int, idx []int) bool {
	var pos, neg bool
	for _, i := range idx {
		if labels[i] == 1 {
			pos = true
		} else {
			neg = true
		}
	}
	return pos && neg
}

// slowScore is the ensemble's probability estimate for the slow class.
func slowScore(forest *randomforest.Forest, x []float64) float64 {
	vote := forest.Vote(x)
	if len(vote) < 2 {
		return 0
	}
	return vote[1]
}

// rocAUC computes the area under the ROC curve from scores via the rank
// (Mann-Whitney) formulation, with average ranks on tied scores. NaN when the
// labels are single-class.
func rocAUC(scores []float64, labels []int) float64 {
	var n1, n0 float64
	for _, y := range labels {
		if y == 1 {
			n1++
		} else {
			n0++
		}
	}
	if n1 == 0 || n0 == 0 {
		return math.NaN()
	}
	ranks := rankAverage(scores)
	sumPos := 0.0
	for i, y := range labels {
		if y == 1 {
			sumPos += ranks[i]
		}
	}
	return (sumPos - n1*(n1+1)/2) / (n1 * n0)
}

func buildFeatureSpec(rows []models.ServiceRequest) *featureSpec {
	topTypes := map[string]bool{}
	for _, r := range rows {
		if r.TopComplaintType {
			topTypes[r.ComplaintType] = true
		}
	}
	types := make([]string, 0, len(topTypes))
	for t := range topTypes {
		types = append(types, t)
	}
	sort.Strings(types)

	spec := &featureSpec{colsOf: map[string][]int{}}
	addFamily := func(family string, levels []string) {
		spec.families = append(spec.families, family)
		for _, level := range levels {
			spec.colsOf[family] = append(spec.colsOf[family], len(spec.columns))
			spec.columns = append(spec.columns, family+"="+level)
		}
	}
	addNumeric := func(family string) {
		spec.families = append(spec.families, family)
		spec.colsOf[family] = []int{len(spec.columns)}
		spec.columns = append(spec.columns, family)
	}

	addFamily("complaint_type", types)
	addFamily("borough", models.Boroughs)
	addFamily("channel", models.Channels)
	addNumeric("hour")
	addNumeric("weekday")
	addNumeric("month")
	return spec
}

func (s *featureSpec) encode(r models.ServiceRequest) []float64 {
	x := make([]float64, len(s.columns))
	oneHot := func(family, level string) {
		for _, col := range s.colsOf[family] {
			if s.columns[col] == family+"="+level {
				x[col] = 1
			}
		}
	}
	if r.TopComplaintType {
		oneHot("complaint_type", r.ComplaintType)
	}
	oneHot("borough", r.Borough)
	oneHot("channel", r.Channel)
	x[s.colsOf["hour"][0]] = float64(r.CreatedAt.Hour())
	x[s.colsOf["weekday"][0]] = float64(r.CreatedAt.Weekday())
	x[s.colsOf["month"][0]] = float64(r.CreatedAt.Month())
	return x
}

// permuteColumns returns a copy of x with the given columns shuffled jointly
// across rows, breaking their relationship to the label while keeping every
// other column intact.
func permuteColumns(x [][]float64, cols []int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(x))
	out := make([][]float64, len(x))
	for i, row := range x {
		cp := append([]float64(nil), row...)
		for _, c := range cols {
			cp[c] = x[perm[i]][c]
		}
		out[i] = cp
	}
	return out
}
