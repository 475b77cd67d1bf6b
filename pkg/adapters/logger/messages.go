package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Comparing %s and %s...":          "%s と %s を比較中...",
		"Output saved to %s":              "出力を %s に保存しました",
		"Pipeline completed successfully": "パイプラインが正常に完了しました",
		"Starting pipeline":               "パイプラインを開始します",
		"Images are identical":            "画像は同一です",
		"Found %d differing pixels (%.4f%%)": "%d 個の異なるピクセルを検出しました (%.4f%%)",

		// Load stage
		"Loading images":                       "画像を読み込み中",
		"decoded %s image %dx%d from %s":       "%s 画像 %dx%d を %s からデコードしました",
		"Images loaded: %dx%d (%s) and %dx%d (%s)": "画像読み込み完了: %dx%d (%s) と %dx%d (%s)",

		// Compare stage
		"Comparing %dx%d pixels":           "%dx%d ピクセルを比較中",
		"Comparison completed in %d ms":    "比較が %d ms で完了しました",

		// Encode stage
		"Encoding diff image as %s":        "差分画像を %s としてエンコード中",
		"Diff image encoded: %d bytes":     "差分画像エンコード完了: %d バイト",

		// Warnings
		"No output path given, skipping diff image": "出力パスが指定されていないため、差分画像をスキップします",
		"Unknown output extension, defaulting to PNG": "不明な出力拡張子のため、PNG で出力します",

		// Errors
		"Failed to load images: %s":        "画像の読み込みに失敗しました: %s",
		"Failed to compare images: %s":     "画像の比較に失敗しました: %s",
		"Failed to write output: %s":       "出力の書き込みに失敗しました: %s",
	})
}
