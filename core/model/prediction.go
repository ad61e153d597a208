package model

import (
	"encoding/json"
	"sort"
)

// Prediction はマルチクラス分類の予測結果です。
// Probsはカテゴリごとの確率、Labelは確率が最大のカテゴリです。
type Prediction struct {
	Probs map[string]float64 `json:"probs"`
	Label string             `json:"label"`
}

// NewPrediction は確率分布からPredictionを作成します。
// 最大確率が同値の場合、カテゴリ名の昇順で最初のものをLabelとします。
func NewPrediction(probs map[string]float64) Prediction {
	cats := make([]string, 0, len(probs))
	for c := range probs {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	var label string
	for i, c := range cats {
		if i == 0 || probs[c] > probs[label] {
			label = c
		}
	}
	return Prediction{Probs: probs, Label: label}
}

// Prob はカテゴリの確率を返します。存在しないカテゴリは0です。
func (p Prediction) Prob(category string) float64 {
	return p.Probs[category]
}

// ProbOrElse はカテゴリの確率を返します。存在しない場合はdefを返します。
func (p Prediction) ProbOrElse(category string, def float64) float64 {
	if v, ok := p.Probs[category]; ok {
		return v
	}
	return def
}

// Categories はカテゴリ名を昇順で返します。
func (p Prediction) Categories() []string {
	cats := make([]string, 0, len(p.Probs))
	for c := range p.Probs {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// String はPredictionをJSON形式で返します。
func (p Prediction) String() string {
	data, err := json.Marshal(p)
	if err != nil {
		return p.Label
	}
	return string(data)
}
