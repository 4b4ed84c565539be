package video

var ExtractResult = extractResult
