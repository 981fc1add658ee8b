package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "SRR Metrics Backend",
    "description": "Support interaction response-time metrics read from the SRR worksheet",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {
      "get": {
        "tags": [
          "health"
        ],
        "summary": "Health check",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "503": {
            "description": "Source unavailable"
          }
        }
      }
    },
    "/api/overview": {
      "get": {
        "tags": [
          "metrics"
        ],
        "summary": "Overview metrics",
        "produces": [
          "application/json"
        ],
        "parameters": [
          {
            "name": "service",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Service filter, All for none"
          },
          {
            "name": "month",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Month filter, All for none"
          },
          {
            "name": "start",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window start (YYYY-MM-DD)"
          },
          {
            "name": "end",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window end (YYYY-MM-DD)"
          },
          {
            "name": "variant",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "all or working_hours"
          }
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "400": {
            "description": "Bad Request"
          },
          "502": {
            "description": "Worksheet unavailable"
          }
        }
      }
    },
    "/api/queue": {
      "get": {
        "tags": [
          "metrics"
        ],
        "summary": "Open cases",
        "produces": [
          "application/json"
        ],
        "parameters": [
          {
            "name": "service",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Service filter, All for none"
          },
          {
            "name": "month",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Month filter, All for none"
          },
          {
            "name": "start",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window start (YYYY-MM-DD)"
          },
          {
            "name": "end",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window end (YYYY-MM-DD)"
          },
          {
            "name": "variant",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "all or working_hours"
          }
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "400": {
            "description": "Bad Request"
          },
          "502": {
            "description": "Worksheet unavailable"
          }
        }
      }
    },
    "/api/breakdowns/{dimension}": {
      "get": {
        "tags": [
          "metrics"
        ],
        "summary": "Response times by dimension",
        "produces": [
          "application/json"
        ],
        "parameters": [
          {
            "name": "dimension",
            "in": "path",
            "type": "string",
            "required": true,
            "description": "hour_created, month, service or case_reason"
          },
          {
            "name": "rank",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "ack or resolve"
          },
          {
            "name": "service",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Service filter, All for none"
          },
          {
            "name": "month",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Month filter, All for none"
          },
          {
            "name": "start",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window start (YYYY-MM-DD)"
          },
          {
            "name": "end",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window end (YYYY-MM-DD)"
          },
          {
            "name": "variant",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "all or working_hours"
          }
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "400": {
            "description": "Bad Request"
          },
          "502": {
            "description": "Worksheet unavailable"
          }
        }
      }
    },
    "/api/agents": {
      "get": {
        "tags": [
          "metrics"
        ],
        "summary": "Agent summary",
        "produces": [
          "application/json"
        ],
        "parameters": [
          {
            "name": "service",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Service filter, All for none"
          },
          {
            "name": "month",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Month filter, All for none"
          },
          {
            "name": "start",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window start (YYYY-MM-DD)"
          },
          {
            "name": "end",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window end (YYYY-MM-DD)"
          },
          {
            "name": "variant",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "all or working_hours"
          }
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "400": {
            "description": "Bad Request"
          },
          "502": {
            "description": "Worksheet unavailable"
          }
        }
      }
    },
    "/api/requestors": {
      "get": {
        "tags": [
          "metrics"
        ],
        "summary": "Requestor by service counts",
        "produces": [
          "application/json"
        ],
        "parameters": [
          {
            "name": "service",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Service filter, All for none"
          },
          {
            "name": "month",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Month filter, All for none"
          },
          {
            "name": "start",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window start (YYYY-MM-DD)"
          },
          {
            "name": "end",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window end (YYYY-MM-DD)"
          },
          {
            "name": "variant",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "all or working_hours"
          }
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "400": {
            "description": "Bad Request"
          },
          "502": {
            "description": "Worksheet unavailable"
          }
        }
      }
    },
    "/api/distributions": {
      "get": {
        "tags": [
          "metrics"
        ],
        "summary": "Volume distributions",
        "produces": [
          "application/json"
        ],
        "parameters": [
          {
            "name": "service",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Service filter, All for none"
          },
          {
            "name": "month",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Month filter, All for none"
          },
          {
            "name": "start",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window start (YYYY-MM-DD)"
          },
          {
            "name": "end",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window end (YYYY-MM-DD)"
          },
          {
            "name": "variant",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "all or working_hours"
          }
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "400": {
            "description": "Bad Request"
          },
          "502": {
            "description": "Worksheet unavailable"
          }
        }
      }
    },
    "/api/records": {
      "get": {
        "tags": [
          "records"
        ],
        "summary": "Normalized records",
        "produces": [
          "application/json"
        ],
        "parameters": [
          {
            "name": "limit",
            "in": "query",
            "type": "integer",
            "required": false
          },
          {
            "name": "offset",
            "in": "query",
            "type": "integer",
            "required": false
          },
          {
            "name": "service",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Service filter, All for none"
          },
          {
            "name": "month",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Month filter, All for none"
          },
          {
            "name": "start",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window start (YYYY-MM-DD)"
          },
          {
            "name": "end",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window end (YYYY-MM-DD)"
          },
          {
            "name": "variant",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "all or working_hours"
          }
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "400": {
            "description": "Bad Request"
          },
          "502": {
            "description": "Worksheet unavailable"
          }
        }
      }
    },
    "/api/export/{table}": {
      "get": {
        "tags": [
          "export"
        ],
        "summary": "Download a table as CSV",
        "produces": [
          "text/csv"
        ],
        "parameters": [
          {
            "name": "table",
            "in": "path",
            "type": "string",
            "required": true,
            "description": "hourly_services, hourly_ack, monthly, groups, requestors, agents, case_reasons, in_queue, in_progress or raw"
          },
          {
            "name": "service",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Service filter, All for none"
          },
          {
            "name": "month",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Month filter, All for none"
          },
          {
            "name": "start",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window start (YYYY-MM-DD)"
          },
          {
            "name": "end",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window end (YYYY-MM-DD)"
          },
          {
            "name": "variant",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "all or working_hours"
          }
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "400": {
            "description": "Bad Request"
          },
          "502": {
            "description": "Worksheet unavailable"
          }
        }
      }
    },
    "/api/charts/{chart}": {
      "get": {
        "tags": [
          "charts"
        ],
        "summary": "Render a chart as PNG",
        "produces": [
          "image/png"
        ],
        "parameters": [
          {
            "name": "chart",
            "in": "path",
            "type": "string",
            "required": true,
            "description": "services, hourly_ack or agent_ack"
          },
          {
            "name": "service",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Service filter, All for none"
          },
          {
            "name": "month",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Month filter, All for none"
          },
          {
            "name": "start",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window start (YYYY-MM-DD)"
          },
          {
            "name": "end",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "Window end (YYYY-MM-DD)"
          },
          {
            "name": "variant",
            "in": "query",
            "type": "string",
            "required": false,
            "description": "all or working_hours"
          }
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "400": {
            "description": "Bad Request"
          },
          "502": {
            "description": "Worksheet unavailable"
          }
        }
      }
    },
    "/api/refresh": {
      "get": {
        "tags": [
          "refresh"
        ],
        "summary": "Refresh status",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      },
      "post": {
        "tags": [
          "refresh"
        ],
        "summary": "Refresh now",
        "produces": [
          "application/json"
        ],
        "parameters": [
          {
            "name": "X-Admin-Key",
            "in": "header",
            "type": "string",
            "required": false
          }
        ],
        "responses": {
          "200": {
            "description": "OK"
          },
          "401": {
            "description": "Unauthorized"
          }
        }
      }
    },
    "/api/events": {
      "get": {
        "tags": [
          "refresh"
        ],
        "summary": "Refresh events",
        "produces": [
          "text/event-stream"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
