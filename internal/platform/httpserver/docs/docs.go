// Package docs serves the OpenAPI description of the syndicate HTTP API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/assets": {
            "post": {"tags": ["fraction-ledger"], "summary": "Create a fractionalized asset", "parameters": [{"type": "string", "name": "X-User-Id", "in": "header", "required": true}], "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid argument"}, "409": {"description": "Asset exists"}}}
        },
        "/v1/assets/{asset_id}": {
            "get": {"tags": ["fraction-ledger"], "summary": "Get an asset", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/v1/assets/{asset_id}/conservation": {
            "get": {"tags": ["fraction-ledger"], "summary": "Check that positions sum to available fractions", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/assets/{asset_id}/positions": {
            "get": {"tags": ["fraction-ledger"], "summary": "List positions of an asset", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/assets/{asset_id}/positions/{holder}": {
            "get": {"tags": ["fraction-ledger"], "summary": "Get one position", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/assets/{asset_id}/transfers": {
            "post": {"tags": ["fraction-ledger"], "summary": "Transfer fractions", "responses": {"200": {"description": "OK"}, "409": {"description": "Insufficient balance"}}}
        },
        "/v1/assets/{asset_id}/delegations": {
            "post": {"tags": ["fraction-ledger"], "summary": "Delegate fractions once", "responses": {"200": {"description": "OK"}, "409": {"description": "Already delegated or acted"}}}
        },
        "/v1/assets/{asset_id}/royalties/deposit": {
            "post": {"tags": ["fraction-ledger"], "summary": "Deposit royalties into the pool", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/assets/{asset_id}/royalties/claim": {
            "post": {"tags": ["fraction-ledger"], "summary": "Claim the caller's royalty share", "responses": {"200": {"description": "OK"}, "409": {"description": "Nothing to claim"}}}
        },
        "/v1/holders/rage-quit": {
            "post": {"tags": ["fraction-ledger"], "summary": "Burn every eligible position of the caller", "responses": {"200": {"description": "OK"}, "409": {"description": "Already exited"}}}
        },
        "/v1/holders/{holder}/power": {
            "get": {"tags": ["fraction-ledger"], "summary": "Aggregate voting power", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/governance/assets/{asset_id}/eligibility": {
            "get": {"tags": ["governance-engine"], "summary": "Read governance eligibility", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["governance-engine"], "summary": "Set governance eligibility (administrators)", "responses": {"200": {"description": "OK"}, "403": {"description": "Not an administrator"}}}
        },
        "/v1/governance/proposals": {
            "get": {"tags": ["governance-engine"], "summary": "List proposals", "parameters": [{"type": "string", "name": "asset_id", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["governance-engine"], "summary": "Create a proposal", "responses": {"201": {"description": "Created"}, "409": {"description": "Not eligible or no power"}}}
        },
        "/v1/governance/proposals/{proposal_id}": {
            "get": {"tags": ["governance-engine"], "summary": "Get a proposal with its derived state", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/v1/governance/proposals/{proposal_id}/votes": {
            "get": {"tags": ["governance-engine"], "summary": "List vote receipts", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["governance-engine"], "summary": "Cast a vote", "responses": {"200": {"description": "OK"}, "409": {"description": "Not active or already voted"}}}
        },
        "/v1/governance/proposals/{proposal_id}/votes/{holder}": {
            "get": {"tags": ["governance-engine"], "summary": "Whether a holder voted", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/governance/proposals/{proposal_id}/execute": {
            "post": {"tags": ["governance-engine"], "summary": "Execute a succeeded proposal", "responses": {"200": {"description": "OK"}, "409": {"description": "Not succeeded"}}}
        },
        "/v1/governance/proposals/{proposal_id}/cancel": {
            "post": {"tags": ["governance-engine"], "summary": "Cancel a pending or active proposal", "responses": {"200": {"description": "OK"}, "403": {"description": "Not proposer or administrator"}, "409": {"description": "Not cancelable"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Syndicate API",
	Description:      "Fractional ownership ledger and proposal governance.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
