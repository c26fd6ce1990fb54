// Copyright 2023-2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package regression fits a period-aligned ordinary least squares model of a
// factor series against a table of benchmark factors.
package regression

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/tidewater-research/factor-api/dataframe"
)

var (
	ErrSingularDesign = errors.New("regression design matrix is rank deficient")
)

// InterceptName labels the constant regressor in the fitted model
const InterceptName = "const"

// Result holds the fitted OLS model. Coefficients, StdErrs and TStats are
// ordered as VarNames: the intercept first, then one entry per regressor.
type Result struct {
	DependentVar string
	VarNames     []string
	Coefficients []float64
	StdErrs      []float64
	TStats       []float64
	R2           float64
	AdjR2        float64
	NObs         int
	Residuals    []float64
}

// Regress inner joins the series (a single-column monthly frame) with the
// benchmark factor frame on their month period and fits OLS of the series on
// the named regressor columns plus an intercept. When no regressor names are
// given every column of the factor frame is used.
//
// Returns dataframe.ErrEmptyOverlap when the two frames share no period and
// ErrSingularDesign when the design matrix is rank deficient (e.g. a constant
// factor column, or fewer observations than regressors plus one).
func Regress(series *dataframe.DataFrame[time.Time], factors *dataframe.DataFrame[time.Time], regressors ...string) (*Result, error) {
	if len(regressors) == 0 {
		regressors = factors.ColNames
	}

	for _, name := range regressors {
		if factors.ColIndex(name) == -1 {
			return nil, fmt.Errorf("regressor %s not present in factor table", name)
		}
	}

	merged, err := dataframe.MergeMonthly(series, factors)
	if err != nil {
		return nil, err
	}

	// OLS is undefined over missing values; only fully observed periods
	// participate in the fit
	merged = merged.DropNA()

	depName := series.ColNames[0]
	y := merged.Col(depName)
	nObs := len(y)
	nVars := len(regressors) + 1

	if nObs < nVars+1 {
		return nil, fmt.Errorf("%w: %d observations for %d regressors", ErrSingularDesign, nObs, nVars)
	}

	design := mat.NewDense(nObs, nVars, nil)
	for rowIdx := 0; rowIdx < nObs; rowIdx++ {
		design.Set(rowIdx, 0, 1.0)
	}
	for colIdx, name := range regressors {
		design.SetCol(colIdx+1, merged.Col(name))
	}

	yVec := mat.NewVecDense(nObs, y)

	// normal equations; (X'X)^-1 is needed for the standard errors anyway
	var xtx mat.Dense
	xtx.Mul(design.T(), design)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularDesign, err)
	}

	var xty mat.VecDense
	xty.MulVec(design.T(), yVec)

	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	// residual diagnostics
	var fitted mat.VecDense
	fitted.MulVec(design, &beta)

	residuals := make([]float64, nObs)
	rss := 0.0
	for ii := range residuals {
		residuals[ii] = y[ii] - fitted.AtVec(ii)
		rss += residuals[ii] * residuals[ii]
	}

	yMean := stat.Mean(y, nil)
	tss := 0.0
	for _, v := range y {
		tss += (v - yMean) * (v - yMean)
	}

	r2 := 1 - rss/tss
	adjR2 := 1 - (1-r2)*float64(nObs-1)/float64(nObs-nVars)
	sigma2 := rss / float64(nObs-nVars)

	result := &Result{
		DependentVar: depName,
		VarNames:     append([]string{InterceptName}, regressors...),
		Coefficients: make([]float64, nVars),
		StdErrs:      make([]float64, nVars),
		TStats:       make([]float64, nVars),
		R2:           r2,
		AdjR2:        adjR2,
		NObs:         nObs,
		Residuals:    residuals,
	}

	for ii := 0; ii < nVars; ii++ {
		result.Coefficients[ii] = beta.AtVec(ii)
		result.StdErrs[ii] = math.Sqrt(sigma2 * xtxInv.At(ii, ii))
		result.TStats[ii] = result.Coefficients[ii] / result.StdErrs[ii]
	}

	return result, nil
}

// Coefficient returns the fitted coefficient for the named variable;
// the second return is false when the variable is not in the model
func (r *Result) Coefficient(name string) (float64, bool) {
	for ii, varName := range r.VarNames {
		if varName == name {
			return r.Coefficients[ii], true
		}
	}
	return 0, false
}

// Table renders an ASCII regression summary
func (r *Result) Table() string {
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader([]string{"Variable", "Coefficient", "Std Err", "T-Stat"})
	table.SetFooter([]string{
		fmt.Sprintf("Dep: %s", r.DependentVar),
		fmt.Sprintf("N: %d", r.NObs),
		fmt.Sprintf("R2: %.4f", r.R2),
		fmt.Sprintf("Adj R2: %.4f", r.AdjR2),
	})
	table.SetBorder(false)

	for ii, varName := range r.VarNames {
		table.Append([]string{
			varName,
			fmt.Sprintf("%.6f", r.Coefficients[ii]),
			fmt.Sprintf("%.6f", r.StdErrs[ii]),
			fmt.Sprintf("%.4f", r.TStats[ii]),
		})
	}

	table.Render()
	return s.String()
}
