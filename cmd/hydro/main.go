// Command hydro serves the water-body dashboard and runs one-off scans and
// summaries against the analysis service.
package main

func main() {
	Execute()
}
