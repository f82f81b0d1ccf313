package yandict

// Wire types for the two dictionary endpoints. The lookup response is
// keyed by the translation code; each article ("loc") carries the
// headword, transcription, part of speech, paradigm tables and the
// translation list. The corpus response carries example sentences
// tagged by reference type.

type lookupResponse map[string]lookupNamespace

type lookupNamespace struct {
	Regular []lookupArticle `json:"regular"`
	Def     []lookupArticle `json:"def"`
}

type lookupArticle struct {
	Text string        `json:"text"`
	Ts   string        `json:"ts"`
	Pos  *partOfSpeech `json:"pos"`
	Prdg *paradigm     `json:"prdg"`
	Tr   []lookupTr    `json:"tr"`
}

type partOfSpeech struct {
	Tooltip string `json:"tooltip"`
}

type paradigm struct {
	Data []paradigmData `json:"data"`
}

type paradigmData struct {
	Tables []paradigmTable `json:"tables"`
}

type paradigmTable struct {
	Rows [][]string `json:"rows"`
}

type lookupTr struct {
	Text string `json:"text"`
	Def  string `json:"def"`
}

type corpusResponse struct {
	Result corpusResult `json:"result"`
}

type corpusResult struct {
	Examples []corpusExample `json:"examples"`
}

type corpusExample struct {
	Src string    `json:"src"`
	Dst string    `json:"dst"`
	Ref corpusRef `json:"ref"`
}

type corpusRef struct {
	Type string `json:"type"`
}
