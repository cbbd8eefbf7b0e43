package naivebayes

import "encoding/gob"

// The classifier map stores its estimators behind the GroupEstimator
// interface, so the concrete types must be registered before gob can encode
// or decode a saved model.
func init() {
	gob.Register(&BernoulliGroup{})
	gob.Register(&CategoricalGroup{})
	gob.Register(&GaussianGroup{})
}
