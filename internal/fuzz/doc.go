// Package fuzztests houses Go fuzz harnesses for the parse and rewrite
// pipeline (source -> cst -> fix). Its goal is to catch panics, hangs and
// rewrites that are not stable on arbitrary inputs.
//
// Назначение: загружать байты в FileSet и прогонять их через cst.Parse,
// rules.Collect и fix.Rewrite.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/cst, internal/rules, internal/fix.

package fuzztests
