// ImageGuard moderates images through a fixed sequence of detectors and
// fuses their verdicts into Accept, Flag or Reject.
//
// Usage:
//
//	# Start the HTTP API (default when no command is given)
//	imageguard server --config ./config
//
//	# Moderate one image and write the JSON report
//	imageguard moderate photo.jpg --out reports/photo.json
//
//	# Moderate a list of paths or URLs, one per line
//	imageguard batch images.txt --concurrency 8 --csv results.csv
//
//	# Issue an API token
//	imageguard token --subject ops --ttl 24h
package main

func main() {
	Execute()
}
