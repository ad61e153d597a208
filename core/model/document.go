package model

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/YuminosukeSato/linscore/core/sparse"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// ドキュメントのトップレベルキー
const (
	ModelTypeField = "modelType"
	ParamField     = "param"
	EpochField     = "epoch"
	VectorField    = "vector"
)

// DummyModelType はダミーモデルのmodelTypeです。
const DummyModelType = "dummy"

// Document はシリアライズされたモデルのJSON表現です。
//
//	{"modelType": "logistic_regression", "param": {"vector": {"a": 1.5}}}
//
// modelTypeとparam以外のキーはMetadataにそのまま保持され、
// 再エンコード時に書き戻されます。スコアリングには使われません。
type Document struct {
	// ModelType は宣言されたモデルの種類（空の場合は未宣言）
	ModelType string

	// Param はパラメータ部分の生のJSON（形状の判定はloaderが行う）
	Param json.RawMessage

	// Metadata はその他のトップレベルキー（epoch、学習時の情報等）
	Metadata map[string]json.RawMessage
}

// BinaryParam は二値分類モデルのparamの形状です。
type BinaryParam struct {
	Vector *sparse.Vector `json:"vector"`
}

// MulticlassParam はマルチクラスモデルのparamの形状です（カテゴリ → 二値パラメータ）。
type MulticlassParam map[string]BinaryParam

// DecodeDocument はJSONバイト列からDocumentを作成します。
// 返されるエラーはencoding/jsonの診断情報をそのまま含みます。
func DecodeDocument(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// NewBinaryDocument は二値分類モデルのDocumentを作成します。
func NewBinaryDocument(modelType string, params *sparse.Vector) (*Document, error) {
	raw, err := json.Marshal(BinaryParam{Vector: params})
	if err != nil {
		return nil, lserrors.Wrap(err, "encode binary param")
	}
	return &Document{ModelType: modelType, Param: raw}, nil
}

// NewMulticlassDocument はマルチクラスモデルのDocumentを作成します。
func NewMulticlassDocument(modelType string, params map[string]*sparse.Vector) (*Document, error) {
	mp := make(MulticlassParam, len(params))
	for cat, v := range params {
		mp[cat] = BinaryParam{Vector: v}
	}
	raw, err := json.Marshal(mp)
	if err != nil {
		return nil, lserrors.Wrap(err, "encode multiclass param")
	}
	return &Document{ModelType: modelType, Param: raw}, nil
}

// UnmarshalJSON はトップレベルのオブジェクトを分解します。
// modelTypeが文字列でない場合はエラーになります。
func (d *Document) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return lserrors.New("model document must be a JSON object, got null")
	}

	*d = Document{}
	if raw, ok := fields[ModelTypeField]; ok {
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &d.ModelType); err != nil {
				return lserrors.Wrap(err, "modelType must be a string")
			}
		}
		delete(fields, ModelTypeField)
	}
	if raw, ok := fields[ParamField]; ok {
		if !isNull(raw) {
			d.Param = raw
		}
		delete(fields, ParamField)
	}
	if len(fields) > 0 {
		d.Metadata = fields
	}
	return nil
}

// MarshalJSON はMetadataを含めてトップレベルのオブジェクトを書き出します。
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.Metadata)+2)
	for k, v := range d.Metadata {
		out[k] = v
	}
	if d.ModelType != "" {
		mt, err := json.Marshal(d.ModelType)
		if err != nil {
			return nil, err
		}
		out[ModelTypeField] = mt
	}
	if len(d.Param) > 0 {
		out[ParamField] = d.Param
	}
	return json.Marshal(out)
}

// ToJSON はDocumentをインデント付きのJSONにシリアライズします。
func (d *Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Validate はDocumentの最低限の妥当性を検証します（paramの存在のみ）。
// 形状の判定と型の検証はloaderが行います。
func (d *Document) Validate() error {
	if len(bytes.TrimSpace(d.Param)) == 0 {
		return lserrors.NewValidationError(ParamField, "is required", nil)
	}
	return nil
}

// Epoch はメタデータのepochを返します。存在しないか数値でない場合はokがfalseです。
func (d *Document) Epoch() (epoch int64, ok bool) {
	raw, exists := d.Metadata[EpochField]
	if !exists {
		return 0, false
	}
	if err := json.Unmarshal(raw, &epoch); err != nil {
		return 0, false
	}
	return epoch, true
}

// MetadataKeys はメタデータのキーを昇順で返します。
func (d *Document) MetadataKeys() []string {
	keys := make([]string, 0, len(d.Metadata))
	for k := range d.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone はDocumentのディープコピーを作成します。
func (d *Document) Clone() *Document {
	clone := &Document{
		ModelType: d.ModelType,
		Param:     append(json.RawMessage(nil), d.Param...),
	}
	if d.Metadata != nil {
		clone.Metadata = make(map[string]json.RawMessage, len(d.Metadata))
		for k, v := range d.Metadata {
			clone.Metadata[k] = append(json.RawMessage(nil), v...)
		}
	}
	return clone
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
