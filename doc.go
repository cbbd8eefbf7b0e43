// Package symdx implements machine-learning models for symptom-based
// disease diagnosis, built around a mixed-type sparse naive Bayes
// classifier.
//
// Patient records (demographics plus reported symptoms) are encoded into
// fixed-width feature matrices by the encoding package. The naivebayes
// package partitions the encoded columns into contiguous feature groups and
// fits a separate likelihood model per group: Bernoulli for presence flags,
// Categorical for coded attributes and Gaussian for continuous values.
// A random-forest baseline lives in ensemble, scoring in metrics and
// evaluation, and end-to-end training runs in train.
//
// # Quick Start
//
// Train a naive Bayes model over the NLICE encoding and predict:
//
//	cmap, err := naivebayes.NewNLICEClassifierMap(vocab.Len(), encoding.DefaultNLICEEncodings)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	clf := naivebayes.NewSparseNaiveBayes(cmap)
//	if err := clf.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//	proba, err := clf.PredictProba(X)
//
// The symdx command wires the full pipeline from a patient CSV to scored,
// persisted models:
//
//	symdx -model nb -variant nlice -data patients.csv -symptom-db symptoms.json
package symdx
