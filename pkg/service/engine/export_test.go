package engine

var RenderRequest = renderRequest
