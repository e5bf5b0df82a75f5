package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

// inlineSeeds covers the shapes the rewriter treats differently.
var inlineSeeds = []string{
	"",
	"ic()\n",
	"import icecream\n",
	"import icecream as ice, os\n",
	"from icecream import ic\nx = ic(1)\n",
	"from icecream import ic, install\n",
	"from icecream import (\n    ic,\n    install,\n)\n",
	"def f():\n    ic()\n",
	"if x:\n    ic(x)\nelse:\n    pass\n",
	"a = 1; ic(a); b = 2\n",
	"y = ic(a + b) * 2\n",
	"z = ic(ic(1))\n",
	"w = ic(*args)\n",
	"v = ic(a, b)\n",
	"ic(1)  # trailing comment\r\n",
	"print('ic(1)')\n",
	"x = ic(a +\n       b)\n",
	"x = ic('a'\n       'b')\n",
	"f(ic(a +\n  b))\n",
	"def broken(:\n    ic(\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.py файлы
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".py" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	if err != nil {
		return
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
