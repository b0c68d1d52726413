package libdiff

const (
	DeleteTag     = "!delete"
	InsertTag     = "!insert"
	ReplaceTag    = "!replace"
	TagDeleteTag  = "!rmtag"
	TagInsertTag  = "!addtag"
	TagReplaceTag = "!retag"
	StringDiffTag = "!strdiff"
	ArrayDiffTag  = "!arraydiff"
)
