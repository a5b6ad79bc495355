// Package mocks provides shared mock implementations of the study session
// collaborators.
//
// Each mock has a function field per method. When the field is nil the mock
// returns its default values. Calls are recorded for verification:
//
//	gen := &mocks.MockGenerator{
//	    GenerateFn: func(ctx context.Context, notes string) ([]domain.Card, error) {
//	        return []domain.Card{{Question: "Q", Answer: "A"}}, nil
//	    },
//	}
package mocks
