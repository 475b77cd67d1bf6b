// Package main provides localization for the pixdiff CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Perceptual image comparison with block-based scanning": "ブロック走査による知覚的画像比較",

		// Compare command
		"Compare two images and report differing pixels":     "2つの画像を比較し、差分ピクセルを報告",
		"Load settings from a YAML file":                     "YAMLファイルから設定を読み込む",
		"Color difference threshold (0.0-1.0)":               "色差のしきい値（0.0〜1.0）",
		"Detect and ignore anti-aliased pixels":              "アンチエイリアスされたピクセルを検出して無視",
		"Render only differences on a transparent background": "透明な背景に差分のみを描画",
		"Opacity of the grayed background in the diff image": "差分画像のグレー背景の不透明度",
		"Color for anti-aliased pixels (hex)":                "アンチエイリアスピクセルの色（16進数）",
		"Color for differing pixels (hex)":                   "差分ピクセルの色（16進数）",
		"Color for darkened pixels (hex)":                    "暗くなったピクセルの色（16進数）",
		"Scan block size override (power of two)":            "走査ブロックサイズの上書き（2のべき乗）",
		"Worker count for the pixel pass (0 = all CPUs)":     "ピクセル処理のワーカー数（0 = 全CPU）",
		"Decoder scratch memory limit in bytes":              "デコーダの作業メモリ上限（バイト）",
		"PNG compression level (0-9)":                        "PNG圧縮レベル（0〜9）",
		"JPEG quality (1-100)":                               "JPEG品質（1〜100）",
		"Result format: json, text or markdown":              "結果の形式: json、text、markdown",
		"Write the result to a file as well":                 "結果をファイルにも書き出す",
		"Save intermediate artifacts":                        "中間成果物を保存",
		"Directory for debug output":                         "デバッグ出力のディレクトリ",
		"Log level (debug, info, warn, error)":               "ログレベル（debug、info、warn、error）",
		"Suppress all log output":                            "すべてのログ出力を抑制",
		"compare requires <base> and <target> arguments":     "compareには<base>と<target>の引数が必要です",

		// Info command
		"Probe an image file and print its geometry": "画像ファイルを調査して寸法を表示",
		"info requires exactly one <image> argument": "infoには<image>引数が1つだけ必要です",

		// Juxtapose command
		"Render base, target and diff side by side":        "基準、対象、差分を横に並べて描画",
		"Output PNG file path":                             "出力PNGファイルパス",
		"Gap between panels in pixels":                     "パネル間の間隔（ピクセル）",
		"Maximum panel width before scaling down":          "縮小前のパネル最大幅",
		"Hide panel captions":                              "パネルの見出しを非表示",
		"juxtapose requires <base> and <target> arguments": "juxtaposeには<base>と<target>の引数が必要です",
		"Output saved to %s":                               "出力を%sに保存しました",
	})
}
