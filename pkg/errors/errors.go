// Package errors はlinscore全体のエラーハンドリングと警告システムを提供します。
// モデルの読み込み・ディスパッチ・スコアリングで発生する失敗を種類ごとの構造化エラーとして表現し、
// errors.Is / errors.As で判別できるようにします。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("linscore-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// UnknownModelTypeWarningなどの警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nilを渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// UnknownModelTypeWarning は宣言されたmodelTypeが未知のため、既定の戦略にフォールバックした場合の警告です。
type UnknownModelTypeWarning struct {
	Source    string
	ModelType string
	Fallback  string
}

func (w *UnknownModelTypeWarning) Error() string {
	return fmt.Sprintf("%s: unknown modelType %q, falling back to %s", w.Source, w.ModelType, w.Fallback)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UnknownModelTypeWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("source", w.Source).
		Str("model_type", w.ModelType).
		Str("fallback", w.Fallback).
		Str("type", "UnknownModelTypeWarning")
}

// NewUnknownModelTypeWarning は新しいUnknownModelTypeWarningを作成します。
func NewUnknownModelTypeWarning(source, modelType, fallback string) *UnknownModelTypeWarning {
	return &UnknownModelTypeWarning{Source: source, ModelType: modelType, Fallback: fallback}
}

// ===========================================================================
//
//	センチネルエラー
//
// ===========================================================================

var (
	// ErrModelNotFound はモデルのソースが存在しない、または読み取れない場合のエラーです。
	ErrModelNotFound = errors.New("model not found")

	// ErrModelTooLarge はモデルのソースが設定された上限サイズを超えた場合のエラーです。
	ErrModelTooLarge = errors.New("model too large")

	// ErrModelMalformed はモデル文書の解析または形状検証に失敗した場合のエラーです。
	ErrModelMalformed = errors.New("model malformed")

	// ErrUnknownModelType はstrictモードで未知のmodelTypeが宣言された場合のエラーです。
	ErrUnknownModelType = errors.New("unknown model type")

	// ErrNumericalDegenerate は確率分布の正規化の分母がゼロまたは未定義になった場合のエラーです。
	ErrNumericalDegenerate = errors.New("numerical degenerate")

	// ErrLoadTimeout は読み込みがキャンセルまたはタイムアウトした場合のエラーです。
	ErrLoadTimeout = errors.New("model load timeout")
)

// ===========================================================================
//
//	モデル読み込みのエラー型
//
// ===========================================================================

// ModelNotFoundError はソースが存在しない、または読み取れない場合のエラーです。
type ModelNotFoundError struct {
	Source string
	Err    error
}

func (e *ModelNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("linscore: %s: model not found: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("linscore: %s: model not found", e.Source)
}

func (e *ModelNotFoundError) Unwrap() error { return e.Err }

// Is はErrModelNotFoundとの比較を可能にします。
func (e *ModelNotFoundError) Is(target error) bool { return target == ErrModelNotFound }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ModelNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("source", e.Source).
		Str("type", "ModelNotFoundError")
	if e.Err != nil {
		event.Str("cause", e.Err.Error())
	}
}

// NewModelNotFoundError は新しいModelNotFoundErrorを作成し、スタックトレースを付与します。
func NewModelNotFoundError(source string, cause error) error {
	return errors.WithStack(&ModelNotFoundError{Source: source, Err: cause})
}

// ModelTooLargeError はソースのサイズが上限を超えた場合のエラーです。
// Sizeは宣言されたサイズ、またはサイズ不明の場合に上限を超えた時点までに観測したバイト数です。
type ModelTooLargeError struct {
	Source string
	Size   int64
	Limit  int64
}

func (e *ModelTooLargeError) Error() string {
	return fmt.Sprintf("linscore: %s: model too large: %d bytes exceeds limit of %d bytes", e.Source, e.Size, e.Limit)
}

// Is はErrModelTooLargeとの比較を可能にします。
func (e *ModelTooLargeError) Is(target error) bool { return target == ErrModelTooLarge }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ModelTooLargeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("source", e.Source).
		Int64("size", e.Size).
		Int64("limit", e.Limit).
		Str("type", "ModelTooLargeError")
}

// NewModelTooLargeError は新しいModelTooLargeErrorを作成し、スタックトレースを付与します。
func NewModelTooLargeError(source string, size, limit int64) error {
	return errors.WithStack(&ModelTooLargeError{Source: source, Size: size, Limit: limit})
}

// ModelMalformedError はモデル文書が不正な場合のエラーです。
// Errには下層のパーサ診断（構文エラーのオフセットなど）または形状検証の失敗理由が入ります。
type ModelMalformedError struct {
	Source string
	Reason string
	Err    error
}

func (e *ModelMalformedError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("linscore: %s: malformed model: %s: %v", e.Source, e.Reason, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("linscore: %s: malformed model: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("linscore: %s: malformed model: %s", e.Source, e.Reason)
	}
}

func (e *ModelMalformedError) Unwrap() error { return e.Err }

// Is はErrModelMalformedとの比較を可能にします。
func (e *ModelMalformedError) Is(target error) bool { return target == ErrModelMalformed }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ModelMalformedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("source", e.Source).
		Str("reason", e.Reason).
		Str("type", "ModelMalformedError")
	if e.Err != nil {
		event.Str("diagnostic", e.Err.Error())
	}
}

// NewModelMalformedError は新しいModelMalformedErrorを作成し、スタックトレースを付与します。
func NewModelMalformedError(source, reason string, cause error) error {
	return errors.WithStack(&ModelMalformedError{Source: source, Reason: reason, Err: cause})
}

// UnknownModelTypeError はstrictモードで未知のmodelTypeが宣言された場合のエラーです。
type UnknownModelTypeError struct {
	Source    string
	ModelType string
	Shape     string // "binary" または "multiclass"
}

func (e *UnknownModelTypeError) Error() string {
	return fmt.Sprintf("linscore: %s: unknown %s modelType %q", e.Source, e.Shape, e.ModelType)
}

// Is はErrUnknownModelTypeとの比較を可能にします。
func (e *UnknownModelTypeError) Is(target error) bool { return target == ErrUnknownModelType }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnknownModelTypeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("source", e.Source).
		Str("model_type", e.ModelType).
		Str("shape", e.Shape).
		Str("type", "UnknownModelTypeError")
}

// NewUnknownModelTypeError は新しいUnknownModelTypeErrorを作成し、スタックトレースを付与します。
func NewUnknownModelTypeError(source, modelType, shape string) error {
	return errors.WithStack(&UnknownModelTypeError{Source: source, ModelType: modelType, Shape: shape})
}

// LoadTimeoutError は呼び出し側のコンテキストがキャンセルされた、または期限切れになった場合のエラーです。
type LoadTimeoutError struct {
	Source string
	Err    error
}

func (e *LoadTimeoutError) Error() string {
	return fmt.Sprintf("linscore: %s: model load abandoned: %v", e.Source, e.Err)
}

func (e *LoadTimeoutError) Unwrap() error { return e.Err }

// Is はErrLoadTimeoutとの比較を可能にします。
func (e *LoadTimeoutError) Is(target error) bool { return target == ErrLoadTimeout }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *LoadTimeoutError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("source", e.Source).
		Str("cause", fmt.Sprint(e.Err)).
		Str("type", "LoadTimeoutError")
}

// NewLoadTimeoutError は新しいLoadTimeoutErrorを作成し、スタックトレースを付与します。
func NewLoadTimeoutError(source string, cause error) error {
	return errors.WithStack(&LoadTimeoutError{Source: source, Err: cause})
}

// ===========================================================================
//
//	汎用のエラー型
//
// ===========================================================================

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("linscore: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("linscore: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")
)
