package model

import (
	"io"
	"os"

	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// Encode はモデルをドキュメント形式のJSONに変換する
//
// 出力はloaderでそのまま読み込める形式で、同じスコアを返すモデルが復元される。
func Encode(m Encoder) ([]byte, error) {
	doc, err := m.Document()
	if err != nil {
		return nil, lserrors.Wrap(err, "failed to build document")
	}
	data, err := doc.ToJSON()
	if err != nil {
		return nil, lserrors.Wrap(err, "failed to encode model")
	}
	return data, nil
}

// SaveModel はモデルをファイルに保存する
//
// パラメータ:
//   - m: 保存するモデル（*linear.Binary、*linear.Multiclass等）
//   - filename: 保存先のファイルパス
//
// 戻り値:
//   - error: 保存に失敗した場合のエラー
//
// 使用例:
//
//	clf, _ := loader.New().Load(ctx, loader.FileSource("spam.json"))
//	err := model.SaveModel(clf.(*linear.Binary).ThresholdParams(0.01), "spam-pruned.json")
func SaveModel(m Encoder, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return lserrors.Wrapf(err, "failed to create file %s", filename)
	}
	defer file.Close()

	if err := SaveModelToWriter(m, file); err != nil {
		return err
	}
	return file.Close()
}

// SaveModelToWriter はモデルをio.Writerに保存する
//
// パラメータ:
//   - m: 保存するモデル
//   - w: 保存先のWriter
//
// 戻り値:
//   - error: 保存に失敗した場合のエラー
func SaveModelToWriter(m Encoder, w io.Writer) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return lserrors.Wrap(err, "failed to write model")
	}
	return nil
}
