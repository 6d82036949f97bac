// Package docs регистрирует swagger-спецификацию HTTP API в swag.
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
        "/products": {
            "get": {
                "tags": ["catalog"],
                "summary": "Список товаров",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Категория: main или accessory", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ProductView"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "tags": ["catalog"],
                "summary": "Товар по ID",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "ID товара", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ProductView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/{id}/accessories": {
            "get": {
                "tags": ["catalog"],
                "summary": "Аксессуары к товару",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "ID основного товара", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ProductView"}}}
                }
            }
        },
        "/cart": {
            "get": {
                "tags": ["cart"],
                "summary": "Корзина текущей сессии",
                "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/sessionHeader"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CartResponse"}}}
            },
            "delete": {
                "tags": ["cart"],
                "summary": "Очистить корзину",
                "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/sessionHeader"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CartResponse"}}}
            }
        },
        "/cart/items": {
            "post": {
                "tags": ["cart"],
                "summary": "Добавить товар",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/sessionHeader"},
                    {"description": "ID товара", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.AddItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CartResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/cart/items/{id}": {
            "patch": {
                "tags": ["cart"],
                "summary": "Изменить количество",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/sessionHeader"},
                    {"type": "string", "description": "ID товара", "name": "id", "in": "path", "required": true},
                    {"description": "Количество", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.UpdateQuantityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CartResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["cart"],
                "summary": "Удалить товар",
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/sessionHeader"},
                    {"type": "string", "description": "ID товара", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CartResponse"}}}
            }
        },
        "/cart/shipping-method": {
            "put": {
                "tags": ["cart"],
                "summary": "Выбрать способ доставки",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/sessionHeader"},
                    {"description": "Способ доставки или null", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.SetShippingMethodRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CartResponse"}}}
            }
        },
        "/shipping-rates": {
            "post": {
                "tags": ["shipping"],
                "summary": "Расчёт доставки",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Адрес и вес, кг", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.ShippingRatesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ShippingRatesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/checkout-sessions": {
            "post": {
                "tags": ["payment"],
                "summary": "Сессия оплаты на стороне провайдера",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Позиции и URL возврата", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CheckoutSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CheckoutSessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/payment-intents": {
            "post": {
                "tags": ["payment"],
                "summary": "Намерение оплаты",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Позиции, валюта и стоимость доставки", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.PaymentIntentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.PaymentIntentResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/checkout": {
            "post": {
                "tags": ["checkout"],
                "summary": "Начать оформление",
                "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/sessionHeader"}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.CheckoutSession"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/checkout/{id}": {
            "get": {
                "tags": ["checkout"],
                "summary": "Состояние оформления",
                "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/sessionHeader"}, {"$ref": "#/parameters/checkoutID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CheckoutSession"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/checkout/{id}/address": {
            "post": {
                "tags": ["checkout"],
                "summary": "Адрес доставки",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/sessionHeader"},
                    {"$ref": "#/parameters/checkoutID"},
                    {"description": "Адрес", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Address"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CheckoutSession"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/checkout/{id}/shipping-method": {
            "post": {
                "tags": ["checkout"],
                "summary": "Выбор способа доставки",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/sessionHeader"},
                    {"$ref": "#/parameters/checkoutID"},
                    {"description": "ID способа", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.SelectShippingMethodRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CheckoutSession"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/checkout/{id}/payment-step": {
            "post": {
                "tags": ["checkout"],
                "summary": "Переход к оплате",
                "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/sessionHeader"}, {"$ref": "#/parameters/checkoutID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CheckoutSession"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/checkout/{id}/back": {
            "post": {
                "tags": ["checkout"],
                "summary": "Возврат на предыдущий шаг",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/sessionHeader"},
                    {"$ref": "#/parameters/checkoutID"},
                    {"description": "Шаг", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.BackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CheckoutSession"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/checkout/{id}/confirm": {
            "post": {
                "tags": ["checkout"],
                "summary": "Подтверждение оплаты",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/sessionHeader"},
                    {"$ref": "#/parameters/checkoutID"},
                    {"description": "Адрес плательщика", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/http.ConfirmRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ConfirmResponse"}},
                    "402": {"description": "Payment Required", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "parameters": {
        "sessionHeader": {"type": "string", "description": "ID сессии корзины", "name": "X-Session-ID", "in": "header"},
        "checkoutID": {"type": "string", "description": "ID оформления", "name": "id", "in": "path", "required": true}
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "integer"}, "message": {"type": "string"}}
        },
        "domain.Address": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "line1": {"type": "string"},
                "line2": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "postal_code": {"type": "string"},
                "country": {"type": "string"}
            }
        },
        "domain.ProductView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "image": {"type": "string"},
                "price": {"type": "string"},
                "currency": {"type": "string"},
                "weight": {"type": "number"},
                "category": {"type": "string", "enum": ["main", "accessory"]}
            }
        },
        "domain.ShippingMethod": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "price": {"type": "string"},
                "currency": {"type": "string"},
                "min_delivery_time": {"type": "integer"},
                "max_delivery_time": {"type": "integer"},
                "carrier": {"type": "string"},
                "service_point_input": {"type": "string"}
            }
        },
        "domain.CartItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "string"},
                "currency": {"type": "string"},
                "image": {"type": "string"},
                "weight": {"type": "number"},
                "quantity": {"type": "integer"}
            }
        },
        "domain.PaymentState": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "clientSecret": {"type": "string"},
                "amount": {"type": "integer"},
                "currency": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "domain.CheckoutSession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "step": {"type": "string", "enum": ["shipping", "shipping-method", "payment", "completed"]},
                "shippingAddress": {"$ref": "#/definitions/domain.Address"},
                "shippingMethods": {"type": "array", "items": {"$ref": "#/definitions/domain.ShippingMethod"}},
                "payment": {"$ref": "#/definitions/domain.PaymentState"},
                "orderId": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "http.CartResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.CartItem"}},
                "selectedShippingMethod": {"$ref": "#/definitions/domain.ShippingMethod"},
                "total": {"type": "string"},
                "itemCount": {"type": "integer"},
                "totalWithShipping": {"type": "string"}
            }
        },
        "http.AddItemRequest": {"type": "object", "properties": {"id": {"type": "string"}}},
        "http.UpdateQuantityRequest": {"type": "object", "properties": {"quantity": {"type": "integer"}}},
        "http.SetShippingMethodRequest": {"type": "object", "properties": {"method": {"$ref": "#/definitions/domain.ShippingMethod"}}},
        "http.ShippingRatesRequest": {
            "type": "object",
            "properties": {"shippingAddress": {"$ref": "#/definitions/domain.Address"}, "weight": {"type": "number"}}
        },
        "http.ShippingRatesResponse": {
            "type": "object",
            "properties": {"shippingRates": {"type": "array", "items": {"$ref": "#/definitions/domain.ShippingMethod"}}}
        },
        "http.LineItemRequest": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "quantity": {"type": "integer"}}
        },
        "http.CheckoutSessionRequest": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/http.LineItemRequest"}},
                "successUrl": {"type": "string"},
                "cancelUrl": {"type": "string"}
            }
        },
        "http.CheckoutSessionResponse": {"type": "object", "properties": {"url": {"type": "string"}}},
        "http.PaymentIntentRequest": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/http.LineItemRequest"}},
                "currency": {"type": "string"},
                "shippingCost": {"type": "string"}
            }
        },
        "http.PaymentIntentResponse": {"type": "object", "properties": {"clientSecret": {"type": "string"}}},
        "http.SelectShippingMethodRequest": {"type": "object", "properties": {"methodId": {"type": "integer"}}},
        "http.BackRequest": {"type": "object", "properties": {"step": {"type": "string"}}},
        "http.ConfirmRequest": {"type": "object", "properties": {"billingAddress": {"$ref": "#/definitions/domain.Address"}}},
        "http.ConfirmResponse": {
            "type": "object",
            "properties": {"checkoutId": {"type": "string"}, "orderId": {"type": "string"}, "redirectUrl": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Каталог, корзина, доставка и оформление заказа.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
