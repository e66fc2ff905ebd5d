package searchdb

// Document is a property listing as stored in the index. Status and Geohash
// are the queried fields. Source holds the full JSON record and is stored but
// not indexed.
type Document struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Geohash string `json:"geohash"`
	Source  string `json:"source"`
}

type Result struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

type Response struct {
	Results    []Result `json:"results"`
	Total      uint64   `json:"total"`
	SearchTime string   `json:"search_time"`
}
