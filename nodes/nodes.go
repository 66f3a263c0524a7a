// Package nodes implements the RTX Remix nodes and their registry.
//
// Every node talking to Remix is built with nodeapi.Threaded: its first input and output are the
// connection context and it carries an "enabled" gate. Pure helper nodes (string constants,
// switches, layer id composition) are plain descriptors.
package nodes

import (
	"net/http"
	"os"

	"github.com/richinsley/remix2go/nodeapi"
	"github.com/richinsley/remix2go/remixapi"
)

// PrefixMenu is the root of every node category
const PrefixMenu = "RTX Remix"

// NoneType is the sentinel meaning "no type". It is always valid and never sent to the service.
const NoneType = "None"

func category(file string) string {
	return PrefixMenu + "/" + file
}

// Env holds what the nodes need from their process
type Env struct {
	// HTTPClient is used for every Remix call, http.DefaultClient when nil
	HTTPClient *http.Client
	// TempDirectory receives the images written during ingestion, os.TempDir() when empty
	TempDirectory string
	// DefaultAddress and DefaultPort are the defaults of the start context node
	DefaultAddress string
	DefaultPort    int
}

func (e *Env) client(rc nodeapi.RemixContext) *remixapi.RemixClient {
	c := remixapi.NewRemixClient(rc.Address, rc.Port)
	if e != nil && e.HTTPClient != nil {
		c.SetHttpClient(e.HTTPClient)
	}
	return c
}

func (e *Env) tempDirectory() string {
	if e == nil || e.TempDirectory == "" {
		return os.TempDir()
	}
	return e.TempDirectory
}

func (e *Env) defaultAddress() string {
	if e == nil || e.DefaultAddress == "" {
		return "127.0.0.1"
	}
	return e.DefaultAddress
}

func (e *Env) defaultPort() int {
	if e == nil || e.DefaultPort == 0 {
		return 8011
	}
	return e.DefaultPort
}

// DisplayNames are the human readable names of every node.
// NOTE: identifiers should be globally unique
var DisplayNames = map[string]string{
	"RTXRemixCreateLayer":               "RTX Remix Create Layer",
	"RTXRemixDefineLayerId":             "RTX Remix Define Layer ID",
	"RTXRemixDeleteFile":                "RTX Remix Delete File",
	"RTXRemixEndContext":                "RTX Remix End Context",
	"RTXRemixGetEditTarget":             "RTX Remix Get Edit Target",
	"RTXRemixGetLayers":                 "RTX Remix Get Layers",
	"RTXRemixGetTextures":               "RTX Remix Get Textures",
	"RTXRemixIngestTexture":             "RTX Remix Ingest Texture",
	"RTXRemixInvertBool":                "RTX Remix Invert Boolean Value",
	"RTXRemixLayerType":                 "RTX Remix Layer Type",
	"RTXRemixLayerTypes":                "RTX Remix Layer Types",
	"RTXRemixMuteLayer":                 "RTX Remix Mute Layer",
	"RTXRemixRemoveLayer":               "RTX Remix Remove Layer",
	"RTXRemixRestAPIDetails":            "RTX Remix Rest API Details",
	"RTXRemixSaveLayer":                 "RTX Remix Save Layer",
	"RTXRemixSetEditTarget":             "RTX Remix Set Edit Target",
	"RTXRemixSetTexture":                "RTX Remix Set Texture",
	"RTXRemixStartContext":              "RTX Remix Start Context",
	"RTXRemixStringConcatenate":         "RTX Remix String Concatenate",
	"RTXRemixStringConstant":            "RTX Remix String Constant",
	"RTXRemixStrToList":                 "RTX Remix String to List",
	"RTXRemixSwitch":                    "RTX Remix Switch",
	"RTXRemixTexturesType":              "RTX Remix Texture Type",
	"RTXRemixTexturesTypes":             "RTX Remix Texture Types",
	"RTXRemixTextureTypeToUSDAttribute": "RTX Remix Texture Type To USD Attribute",
}

func displayName(id string) string {
	if name, ok := DisplayNames[id]; ok {
		return name
	}
	return id
}

// Descriptors builds every node
func Descriptors(env *Env) []*nodeapi.Descriptor {
	var all []*nodeapi.Descriptor
	all = append(all, commonNodes(env)...)
	all = append(all, fileNodes(env)...)
	all = append(all, ingestionNodes(env)...)
	all = append(all, layerNodes(env)...)
	all = append(all, textureNodes(env)...)
	return all
}

// Register adds every node to r
func Register(r *nodeapi.Registry, env *Env) error {
	for _, d := range Descriptors(env) {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding every node
func NewRegistry(env *Env) *nodeapi.Registry {
	r := nodeapi.NewRegistry()
	if err := Register(r, env); err != nil {
		panic(err)
	}
	return r
}
