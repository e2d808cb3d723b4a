// Package sdk provides a Go client for the shardagg HTTP API.
//
// shardagg fans a query out to every shard worker, merges their ranked
// lists into one global page and fills the page with display data fetched
// from the workers that own each document.
//
//	client, _ := sdk.New("http://localhost:8080", sdk.WithAPIKey(key))
//	page, _ := client.Search(ctx, sdk.SearchQuery{
//	    Query:      "red apple",
//	    Count:      20,
//	    Properties: []string{"title", "body"},
//	})
//	for _, it := range page.Items {
//	    fmt.Println(it.Rank, it.Doc, it.Score, it.Fields["title"].Snippet)
//	}
//
// Failed requests return *APIError, which matches the exported sentinels
// with errors.Is.
package sdk
