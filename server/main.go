// Copyright 2026 Aoi Tanaka.
// All rights reserved.

// Binary server runs the kanaderu fan-site backend on App Engine.
package main

import (
	"net/http"

	"google.golang.org/appengine/v2"
)

func main() {
	// Public, permissive endpoints.
	addHandler("/catalog", http.MethodGet, anyOrigin, handleCatalogGet)
	addHandler("/search", http.MethodGet, anyOrigin, handleSearch)
	addHandler("/request", http.MethodPost, anyOrigin, handleRequest)
	addHandler("/suggest", http.MethodPost, anyOrigin, handleSuggest)
	addHandler("/posts", http.MethodGet, anyOrigin, handlePosts)
	addHandler("/image", http.MethodGet, anyOrigin, handleImage)

	// Endpoints restricted to the fan-site origin.
	addHandler("/admin", http.MethodPost, fanOnly, handleAdmin)
	addHandler("/delete_post", http.MethodPost, fanOnly, handleDeletePost)
	addHandler("/log_search", http.MethodPost, fanOnly, handleLogSearch)
	addHandler("/ranking", http.MethodGet, fanOnly, handleRanking)
	addHandler("/save_catalog", http.MethodPost, fanOnly, handleSaveCatalog)
	addHandler("/save_post", http.MethodPost, fanOnly, handleSavePost)
	addHandler("/upload", http.MethodPost, fanOnly, handleUpload)

	// Task-queue workers.
	addHandler("/tasks/record_search", http.MethodPost, taskOnly, handleRecordSearchTask)

	appengine.Main()
}
