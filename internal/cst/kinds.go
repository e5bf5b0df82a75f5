package cst

// Node kinds of the tree-sitter Python grammar used across the linter.
const (
	KindModule              = "module"
	KindBlock               = "block"
	KindComment             = "comment"
	KindIdentifier          = "identifier"
	KindDottedName          = "dotted_name"
	KindAliasedImport       = "aliased_import"
	KindRelativeImport      = "relative_import"
	KindWildcardImport      = "wildcard_import"
	KindImport              = "import_statement"
	KindImportFrom          = "import_from_statement"
	KindFutureImport        = "future_import_statement"
	KindExpressionStatement = "expression_statement"
	KindCall                = "call"
	KindArgumentList        = "argument_list"
	KindGeneratorExpression = "generator_expression"
	KindKeywordArgument     = "keyword_argument"
	KindListSplat           = "list_splat"
	KindDictionarySplat     = "dictionary_splat"
	KindParenthesized       = "parenthesized_expression"
	KindNamedExpression     = "named_expression"
	KindSemicolon           = ";"
)

// Field names the grammar binds to children.
const (
	FieldFunction   = "function"
	FieldArguments  = "arguments"
	FieldName       = "name"
	FieldAlias      = "alias"
	FieldModuleName = "module_name"
	FieldLeft       = "left"
	FieldRight      = "right"
	FieldValue      = "value"
	FieldObject     = "object"
	FieldSubscript  = "subscript"
	FieldBody       = "body"
)
