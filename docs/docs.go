// Package docs 记账本 HTTP 接口的 Swagger 文档
//
// 内容与 api 包中 handler 上的 swag 注释一致，修改接口后可用 swag init 重新生成。
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
        "/api/v1/categories": {
            "get": {
                "description": "返回记录中出现过的类别名称，按名称升序去重。可按类型筛选。",
                "produces": ["application/json"],
                "tags": ["收支记录"],
                "summary": "获取已使用的类别列表",
                "parameters": [
                    {"type": "string", "description": "类型 income/expense", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/api.Response"},
                                {"type": "object", "properties": {"data": {"type": "array", "items": {"type": "string"}}}}
                            ]
                        }
                    },
                    "400": {"description": "请求参数错误", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/export/csv": {
            "get": {
                "description": "筛选条件与列表接口一致",
                "produces": ["text/csv"],
                "tags": ["导出"],
                "summary": "导出收支记录",
                "parameters": [
                    {"type": "string", "description": "类型 income/expense", "name": "type", "in": "query"},
                    {"type": "string", "description": "类别筛选", "name": "category", "in": "query"},
                    {"type": "string", "description": "开始时间 (2024-01-01)", "name": "start_time", "in": "query"},
                    {"type": "string", "description": "结束时间 (2024-12-31)", "name": "end_time", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "CSV 文件", "schema": {"type": "file"}},
                    "400": {"description": "请求参数错误", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/export/excel": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["导出"],
                "summary": "导出收支记录为 Excel",
                "parameters": [
                    {"type": "string", "description": "类型 income/expense", "name": "type", "in": "query"},
                    {"type": "string", "description": "类别筛选", "name": "category", "in": "query"},
                    {"type": "string", "description": "开始时间 (2024-01-01)", "name": "start_time", "in": "query"},
                    {"type": "string", "description": "结束时间 (2024-12-31)", "name": "end_time", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "xlsx 文件", "schema": {"type": "file"}}
                }
            }
        },
        "/api/v1/statistics/summary": {
            "get": {
                "description": "按时间范围、类型、类别统计收入总和、支出总和、结余和各类别合计。不传 start_time/end_time 则统计全部时间。",
                "produces": ["application/json"],
                "tags": ["统计"],
                "summary": "获取收入/支出汇总",
                "parameters": [
                    {"type": "string", "description": "类型 income/expense", "name": "type", "in": "query"},
                    {"type": "string", "description": "类别筛选", "name": "category", "in": "query"},
                    {"type": "string", "description": "开始时间 (YYYY-MM-DD)，例如 2024-01-01", "name": "start_time", "in": "query"},
                    {"type": "string", "description": "结束时间 (YYYY-MM-DD)，例如 2024-12-31", "name": "end_time", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/api.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/api.SummaryResponse"}}}
                            ]
                        }
                    },
                    "400": {"description": "请求参数错误", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/transactions": {
            "get": {
                "description": "按 ID 升序返回，支持分页和按类型、类别、时间范围筛选",
                "produces": ["application/json"],
                "tags": ["收支记录"],
                "summary": "获取收支记录列表",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "每页数量", "name": "page_size", "in": "query"},
                    {"type": "string", "description": "类型 income/expense", "name": "type", "in": "query"},
                    {"type": "string", "description": "类别筛选", "name": "category", "in": "query"},
                    {"type": "string", "description": "开始时间 (2024-01-01)", "name": "start_time", "in": "query"},
                    {"type": "string", "description": "结束时间 (2024-12-31)", "name": "end_time", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/api.Response"},
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "allOf": [
                                                {"$ref": "#/definitions/api.PageResponse"},
                                                {"type": "object", "properties": {"list": {"type": "array", "items": {"$ref": "#/definitions/models.Transaction"}}}}
                                            ]
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["收支记录"],
                "summary": "创建收支记录",
                "parameters": [
                    {"description": "收支记录", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.TransactionRequest"}}
                ],
                "responses": {
                    "200": {
                        "description": "创建成功",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/api.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/models.Transaction"}}}
                            ]
                        }
                    },
                    "400": {"description": "请求参数错误", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/transactions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["收支记录"],
                "summary": "获取单条收支记录",
                "parameters": [
                    {"type": "integer", "description": "记录ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/api.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/models.Transaction"}}}
                            ]
                        }
                    },
                    "404": {"description": "记录不存在", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["收支记录"],
                "summary": "更新收支记录",
                "parameters": [
                    {"type": "integer", "description": "记录ID", "name": "id", "in": "path", "required": true},
                    {"description": "要修改的字段", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.TransactionRequest"}}
                ],
                "responses": {
                    "200": {
                        "description": "更新成功",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/api.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/models.Transaction"}}}
                            ]
                        }
                    },
                    "400": {"description": "请求参数错误", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "记录不存在", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["收支记录"],
                "summary": "删除收支记录",
                "parameters": [
                    {"type": "integer", "description": "记录ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "删除成功", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        }
    },
    "definitions": {
        "api.CategoryTotal": {
            "type": "object",
            "properties": {
                "category": {"type": "string", "example": "groceries"},
                "count": {"type": "integer", "example": 3},
                "total": {"type": "string", "example": "123.45"},
                "type": {"type": "string", "example": "expense"}
            }
        },
        "api.PageResponse": {
            "type": "object",
            "properties": {
                "list": {},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "api.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        },
        "api.SummaryResponse": {
            "type": "object",
            "properties": {
                "balance": {"type": "string", "example": "4876.55"},
                "categories": {"type": "array", "items": {"$ref": "#/definitions/api.CategoryTotal"}},
                "count": {"type": "integer", "example": 12},
                "total_expense": {"type": "string", "example": "123.45"},
                "total_income": {"type": "string", "example": "5000.00"}
            }
        },
        "api.TransactionRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "42.50"},
                "category": {"type": "string", "example": "groceries"},
                "date": {"type": "string", "example": "2024-01-15"},
                "description": {"type": "string", "example": "weekly shop"},
                "type": {"type": "string", "example": "expense"}
            }
        },
        "models.Transaction": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "42.5"},
                "category": {"type": "string", "example": "groceries"},
                "date": {"type": "string", "example": "2024-01-15T00:00:00Z"},
                "description": {"type": "string", "example": "weekly shop"},
                "id": {"type": "integer", "example": 1},
                "type": {"type": "string", "enum": ["income", "expense"], "example": "expense"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "记账本 API",
	Description:      "本地收支记录存储的 HTTP 接口，支持记录增删改查、筛选、统计和数据导出",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
